package domain

import (
	"time"

	"github.com/google/uuid"
)

type TxType string

const (
	TxTypeCharge   TxType = "charge"
	TxTypeRefund   TxType = "refund"
	TxTypeBonus    TxType = "bonus"
	TxTypePurchase TxType = "purchase"
)

// Debit reports whether the transaction type decreases the balance.
func (t TxType) Debit() bool { return t == TxTypeCharge }

// WalletTransaction is one immutable row of the audit trail. Amount is
// stored unsigned; the direction is carried by TxType. For any user and
// category, BalanceBefore of row n equals BalanceAfter of row n-1, so
// replaying the log reproduces the current balance exactly.
type WalletTransaction struct {
	ID            int64
	UserID        int64
	Category      Category
	TxType        TxType
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	Description   string
	RequestID     *uuid.UUID
	CreatedAt     time.Time
}
