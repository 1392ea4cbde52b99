package ledger

import (
	"context"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/google/uuid"
)

// Mutation describes one balance change to apply atomically together
// with its audit row. Amount is always positive; TxType carries the
// direction.
type Mutation struct {
	UserID      int64
	Category    domain.Category
	TxType      domain.TxType
	Amount      int64
	Description string
	RequestID   *uuid.UUID
}

// Store is the persistence contract for wallets. Implementations must
// serialize Apply calls per (user, category): two concurrent debits can
// never both observe the same balance. The balance check for debits
// happens inside Apply, under that serialization, and a debit that
// would drive the balance negative fails with
// domain.ErrInsufficientBalance leaving no trace.
type Store interface {
	// GetOrCreateWallet is an idempotent upsert: the first call for a
	// user creates an empty wallet, every later call returns it.
	GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error)

	// Apply atomically adjusts one category balance and appends the
	// audit row with accurate before/after snapshots.
	Apply(ctx context.Context, m Mutation) (*domain.WalletTransaction, error)

	// Transactions returns the newest audit rows for a user.
	Transactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error)
}
