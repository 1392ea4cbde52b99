package domain

import "errors"

var (
	ErrUnknownModel        = errors.New("unknown model")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrRequestCancelled    = errors.New("request cancelled")
	ErrAllProvidersFailed  = errors.New("all providers failed")
)
