package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
)

// MemStore is an in-memory Store used by tests and local development.
// A single mutex serializes all mutations, which trivially satisfies
// the per-(user, category) serialization contract.
type MemStore struct {
	mu      sync.Mutex
	wallets map[int64]*domain.Wallet
	log     []domain.WalletTransaction
	nextID  int64
}

func NewMemStore() *MemStore {
	return &MemStore{wallets: make(map[int64]*domain.Wallet)}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.walletLocked(userID)
	cp := *w
	return &cp, nil
}

func (s *MemStore) walletLocked(userID int64) *domain.Wallet {
	w, ok := s.wallets[userID]
	if !ok {
		now := time.Now()
		w = &domain.Wallet{UserID: userID, CreatedAt: now, UpdatedAt: now}
		s.wallets[userID] = w
	}
	return w
}

func (s *MemStore) Apply(ctx context.Context, m Mutation) (*domain.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.walletLocked(m.UserID)

	before := w.Balance(m.Category)
	after := before + m.Amount
	if m.TxType.Debit() {
		after = before - m.Amount
		if after < 0 {
			return nil, domain.ErrInsufficientBalance
		}
	}

	w.SetBalance(m.Category, after)
	w.UpdatedAt = time.Now()

	s.nextID++
	row := domain.WalletTransaction{
		ID:            s.nextID,
		UserID:        m.UserID,
		Category:      m.Category,
		TxType:        m.TxType,
		Amount:        m.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   m.Description,
		RequestID:     m.RequestID,
		CreatedAt:     time.Now(),
	}
	s.log = append(s.log, row)

	cp := row
	return &cp, nil
}

func (s *MemStore) Transactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.WalletTransaction
	for i := len(s.log) - 1; i >= 0 && len(out) < limit; i-- {
		if s.log[i].UserID == userID {
			out = append(out, s.log[i])
		}
	}
	return out, nil
}
