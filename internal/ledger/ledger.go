package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/google/uuid"
)

// Service owns every balance mutation. Charges fail fast on business
// grounds; refunds and credits only ever fail on infrastructure
// trouble, which is retried and, if it persists, escalated loudly —
// an unrefunded charge is lost user money and must never disappear
// into a swallowed error.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetOrCreateWallet is an idempotent fetch-or-create.
func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.store.GetOrCreateWallet(ctx, userID)
}

// Charge debits amount from the user's category balance. Returns
// domain.ErrInsufficientBalance without any side effect if the balance
// is short. Never retried: a failed charge means no money moved.
func (s *Service) Charge(ctx context.Context, userID int64, category domain.Category, amount int64, description string, requestID uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	row, err := s.store.Apply(ctx, Mutation{
		UserID:      userID,
		Category:    category,
		TxType:      domain.TxTypeCharge,
		Amount:      amount,
		Description: description,
		RequestID:   &requestID,
	})
	if err != nil {
		return 0, err
	}
	slog.Info("charged",
		"user_id", userID, "category", category, "amount", amount,
		"balance", row.BalanceAfter, "request_id", requestID)
	return row.ID, nil
}

// Refund returns a previously charged amount to the user. The request
// id ties the refund to its charge in the audit trail. Runs detached
// from caller cancellation: a user closing the chat must not be able
// to cancel their own refund.
func (s *Service) Refund(ctx context.Context, userID int64, category domain.Category, amount int64, description string, requestID uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return s.applyWithRetry(context.WithoutCancel(ctx), Mutation{
		UserID:      userID,
		Category:    category,
		TxType:      domain.TxTypeRefund,
		Amount:      amount,
		Description: description,
		RequestID:   &requestID,
	})
}

// Credit adds credits via the bonus/purchase path.
func (s *Service) Credit(ctx context.Context, userID int64, category domain.Category, amount int64, txType domain.TxType, description string) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if txType != domain.TxTypeBonus && txType != domain.TxTypePurchase {
		return 0, fmt.Errorf("credit with tx type %q: %w", txType, domain.ErrInvalidAmount)
	}
	return s.applyWithRetry(ctx, Mutation{
		UserID:      userID,
		Category:    category,
		TxType:      txType,
		Amount:      amount,
		Description: description,
	})
}

// Transactions returns the newest audit rows for a user.
func (s *Service) Transactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error) {
	return s.store.Transactions(ctx, userID, limit)
}

func (s *Service) applyWithRetry(ctx context.Context, m Mutation) (int64, error) {
	var lastErr error
	delay := config.LedgerRetryBaseDelay

	for attempt := 1; attempt <= config.LedgerRetryAttempts; attempt++ {
		row, err := s.store.Apply(ctx, m)
		if err == nil {
			slog.Info("credited",
				"user_id", m.UserID, "category", m.Category, "tx_type", m.TxType,
				"amount", m.Amount, "balance", row.BalanceAfter)
			return row.ID, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		lastErr = err
		slog.Warn("ledger write failed, retrying",
			"user_id", m.UserID, "tx_type", m.TxType, "attempt", attempt, "error", err)

		if attempt < config.LedgerRetryAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
			delay *= 2
		}
	}

	// Escalate: this is lost user value if nobody acts on it.
	slog.Error("CRITICAL: ledger write failed after retries, manual reconciliation required",
		"user_id", m.UserID, "category", m.Category, "tx_type", m.TxType,
		"amount", m.Amount, "request_id", m.RequestID, "error", lastErr)
	return 0, fmt.Errorf("ledger write after %d attempts: %w", config.LedgerRetryAttempts, lastErr)
}
