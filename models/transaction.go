package models

import (
	"strings"
	"time"
)

// Transaction types. The sign of a transaction is carried by its type:
// anything prefixed "earned" credits, "redeemed" debits.
const (
	TransactionEarnedReport  = "earned_report"
	TransactionEarnedCollect = "earned_collect"
	TransactionRedeemed      = "redeemed"
)

// Transaction is one row of the append-only points ledger. Rows are never
// updated or deleted; a user's balance is derived by summing them.
type Transaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"not null"`
	Amount      int       `json:"amount" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Date        time.Time `json:"date"`
}

// IsCredit reports whether this transaction adds to the balance.
func (t Transaction) IsCredit() bool {
	return strings.HasPrefix(t.Type, "earned")
}

type TransactionResponse struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}
