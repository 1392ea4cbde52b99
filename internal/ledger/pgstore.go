package ledger

import (
	"context"
	"fmt"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists wallets in Postgres. Serialization per user is
// provided by SELECT ... FOR UPDATE on the wallet row; the balance
// update and the audit insert commit in the same transaction.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("upsert wallet: %w", err)
	}
	return s.getWallet(ctx, s.db, userID, false)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PGStore) getWallet(ctx context.Context, q queryer, userID int64, forUpdate bool) (*domain.Wallet, error) {
	sql := `SELECT user_id, text_credits, image_credits, video_credits, audio_credits,
	               money, created_at, updated_at
	        FROM wallets WHERE user_id = $1`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	w := &domain.Wallet{}
	err := q.QueryRow(ctx, sql, userID).Scan(
		&w.UserID, &w.TextCredits, &w.ImageCredits, &w.VideoCredits, &w.AudioCredits,
		&w.Money, &w.CreatedAt, &w.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (s *PGStore) Apply(ctx context.Context, m Mutation) (*domain.WalletTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the wallet row, creating it first if this user was never seen.
	w, err := s.getWallet(ctx, tx, m.UserID, true)
	if err == domain.ErrWalletNotFound {
		if _, err := tx.Exec(ctx,
			`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
			m.UserID); err != nil {
			return nil, fmt.Errorf("upsert wallet: %w", err)
		}
		w, err = s.getWallet(ctx, tx, m.UserID, true)
	}
	if err != nil {
		return nil, err
	}

	before := w.Balance(m.Category)
	after := before + m.Amount
	if m.TxType.Debit() {
		after = before - m.Amount
		if after < 0 {
			return nil, domain.ErrInsufficientBalance
		}
	}

	column := string(m.Category) + "_credits"
	_, err = tx.Exec(ctx,
		fmt.Sprintf(`UPDATE wallets SET %s = $1, updated_at = now() WHERE user_id = $2`, column),
		after, m.UserID)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	row := &domain.WalletTransaction{
		UserID:        m.UserID,
		Category:      m.Category,
		TxType:        m.TxType,
		Amount:        m.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   m.Description,
		RequestID:     m.RequestID,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO wallet_transactions
		     (user_id, category, tx_type, amount, balance_before, balance_after, description, request_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		row.UserID, row.Category, row.TxType, row.Amount,
		row.BalanceBefore, row.BalanceAfter, row.Description, row.RequestID,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return row, nil
}

func (s *PGStore) Transactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, category, tx_type, amount, balance_before, balance_after,
		        description, request_id, created_at
		 FROM wallet_transactions
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &t.TxType, &t.Amount,
			&t.BalanceBefore, &t.BalanceAfter, &t.Description, &t.RequestID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
