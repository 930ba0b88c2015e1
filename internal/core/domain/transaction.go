package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a wallet transaction.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Payment    TransactionType = "PAYMENT"
)

// WalletTransaction is one line of the append-only wallet ledger.
// Amount is signed: deposits and payments received are positive,
// withdrawals and payments made are negative. The wallet balance at any
// point equals the sum of the amounts recorded up to that point.
type WalletTransaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (e.g., UUID)
	WalletID      string          `json:"walletID"`      // FK -> wallets.wallet_id (Not Null)
	Type          TransactionType `json:"type"`          // DEPOSIT, WITHDRAWAL or PAYMENT
	Amount        decimal.Decimal `json:"amount"`        // Signed; precise decimal type
	Date          time.Time       `json:"date"`          // Calendar date of the event
	Description   string          `json:"description"`   // Free-text label
	AuditFields
}
