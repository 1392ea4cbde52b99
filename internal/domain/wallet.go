package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds one user's credit balances, one integer balance per
// content category, plus a fiat money balance used by top-up flows.
// Balances are mutated only through ledger operations.
type Wallet struct {
	UserID       int64
	TextCredits  int64
	ImageCredits int64
	VideoCredits int64
	AudioCredits int64
	Money        decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Balance returns the credit balance for the given category.
func (w *Wallet) Balance(c Category) int64 {
	switch c {
	case CategoryText:
		return w.TextCredits
	case CategoryImage:
		return w.ImageCredits
	case CategoryVideo:
		return w.VideoCredits
	case CategoryAudio:
		return w.AudioCredits
	}
	return 0
}

// SetBalance overwrites the credit balance for the given category.
// Only ledger stores call this; handler code never mutates a wallet.
func (w *Wallet) SetBalance(c Category, v int64) {
	switch c {
	case CategoryText:
		w.TextCredits = v
	case CategoryImage:
		w.ImageCredits = v
	case CategoryVideo:
		w.VideoCredits = v
	case CategoryAudio:
		w.AudioCredits = v
	}
}
