package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *MemStore) {
	store := NewMemStore()
	return NewService(store), store
}

func TestGetOrCreateWalletIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	w1, err := svc.GetOrCreateWallet(ctx, 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, w1.UserID)
	assert.Zero(t, w1.TextCredits)

	_, err = svc.Credit(ctx, 42, domain.CategoryText, 50, domain.TxTypeBonus, "signup bonus")
	require.NoError(t, err)

	w2, err := svc.GetOrCreateWallet(ctx, 42)
	require.NoError(t, err)
	assert.EqualValues(t, 50, w2.TextCredits, "repeat call must not reset the wallet")
}

func TestChargeAndRefund(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	reqID := uuid.New()

	_, err := svc.Credit(ctx, 1, domain.CategoryImage, 100, domain.TxTypePurchase, "top-up")
	require.NoError(t, err)

	chargeID, err := svc.Charge(ctx, 1, domain.CategoryImage, 30, "generation flux-pro", reqID)
	require.NoError(t, err)
	assert.Positive(t, chargeID)

	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 70, w.ImageCredits)

	refundID, err := svc.Refund(ctx, 1, domain.CategoryImage, 30, "all providers failed", reqID)
	require.NoError(t, err)
	assert.Positive(t, refundID)

	w, err = svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 100, w.ImageCredits, "refund must restore the pre-charge balance")

	// Charge and refund reference the same request in the audit trail.
	txs, err := svc.Transactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.NotNil(t, txs[0].RequestID)
	require.NotNil(t, txs[1].RequestID)
	assert.Equal(t, reqID, *txs[0].RequestID)
	assert.Equal(t, reqID, *txs[1].RequestID)
}

func TestChargeInsufficientBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, domain.CategoryVideo, 10, domain.TxTypeBonus, "bonus")
	require.NoError(t, err)

	_, err = svc.Charge(ctx, 1, domain.CategoryVideo, 11, "too expensive", uuid.New())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// No partial charge, no audit row.
	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 10, w.VideoCredits)

	txs, err := svc.Transactions(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestChargeRejectsInvalidAmount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 1, domain.CategoryText, 0, "zero", uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Charge(ctx, 1, domain.CategoryText, -5, "negative", uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Credit(ctx, 1, domain.CategoryText, 5, domain.TxTypeCharge, "wrong type")
	assert.Error(t, err)
}

func TestCategoriesAreIndependent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, domain.CategoryText, 100, domain.TxTypeBonus, "bonus")
	require.NoError(t, err)

	_, err = svc.Charge(ctx, 1, domain.CategoryImage, 1, "wrong pocket", uuid.New())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance,
		"a text balance must not cover an image charge")
}

func TestTransactionLogReplay(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Credit(ctx, 7, domain.CategoryText, 100, domain.TxTypePurchase, "top-up")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = svc.Charge(ctx, 7, domain.CategoryText, 7, "generation", uuid.New())
		require.NoError(t, err)
	}
	_, err = svc.Refund(ctx, 7, domain.CategoryText, 7, "provider failure", uuid.New())
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 7, domain.CategoryText, 13, domain.TxTypeBonus, "promo")
	require.NoError(t, err)

	// Replay the log oldest-first: every row chains onto the previous
	// one and the final BalanceAfter is the live balance.
	txs, err := svc.Transactions(ctx, 7, 100)
	require.NoError(t, err)
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}

	replayed := int64(0)
	for i, tx := range txs {
		assert.EqualValues(t, replayed, tx.BalanceBefore, "row %d breaks the chain", i)
		if tx.TxType.Debit() {
			replayed -= tx.Amount
		} else {
			replayed += tx.Amount
		}
		assert.EqualValues(t, replayed, tx.BalanceAfter, "row %d snapshot mismatch", i)
	}

	w, err := store.GetOrCreateWallet(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, w.TextCredits, replayed)
}

func TestConcurrentChargesNeverOverdraw(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	const balance = 10
	_, err := svc.Credit(ctx, 1, domain.CategoryText, balance, domain.TxTypePurchase, "top-up")
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Charge(ctx, 1, domain.CategoryText, 1, "concurrent", uuid.New())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, balance, succeeded, "exactly the available balance may be spent")

	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, w.TextCredits)
}

// flakyStore fails Apply a fixed number of times before delegating.
type flakyStore struct {
	Store
	failures int
}

func (f *flakyStore) Apply(ctx context.Context, m Mutation) (*domain.WalletTransaction, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return f.Store.Apply(ctx, m)
}

func TestRefundRetriesInfrastructureFailure(t *testing.T) {
	store := &flakyStore{Store: NewMemStore(), failures: 2}
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Refund(ctx, 1, domain.CategoryAudio, 15, "retry me", uuid.New())
	require.NoError(t, err, "refund must survive transient store failures")

	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 15, w.AudioCredits)
}

func TestRefundEscalatesAfterExhaustedRetries(t *testing.T) {
	store := &flakyStore{Store: NewMemStore(), failures: 100}
	svc := NewService(store)

	_, err := svc.Refund(context.Background(), 1, domain.CategoryAudio, 15, "never lands", uuid.New())
	assert.Error(t, err)
}
