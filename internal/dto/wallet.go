package dto

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
)

// amountPattern is the numeric-with-one-decimal-point shape the amount entry
// field accepts.
var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// AmountString reports whether s looks like a money amount. Wired as the
// "amountstr" binding rule.
func AmountString(s string) bool {
	return s != "" && s != "." && amountPattern.MatchString(s)
}

// ParseAmount converts user-entered amount text to a decimal. Non-numeric
// input fails with apperrors.ErrInvalidAmount; sign and zero checks are the
// service's concern.
func ParseAmount(s string) (decimal.Decimal, error) {
	if !AmountString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount", apperrors.ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount", apperrors.ErrInvalidAmount, s)
	}
	return d, nil
}

// AmountRequest carries a user-entered amount for deposits and withdrawals.
type AmountRequest struct {
	Amount string `json:"amount" binding:"required,amountstr"`
	UserID string `json:"userID" binding:"required"`
}

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID      string            `json:"walletID"`
	UserID        string            `json:"userID"`
	Role          domain.WalletRole `json:"role"`
	CurrencyCode  string            `json:"currencyCode"`
	Balance       decimal.Decimal   `json:"balance"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:      w.WalletID,
		UserID:        w.UserID,
		Role:          w.Role,
		CurrencyCode:  w.CurrencyCode,
		Balance:       w.Balance,
		CreatedAt:     w.CreatedAt,
		LastUpdatedAt: w.LastUpdatedAt,
	}
}

// TransactionResponse defines one line of the wallet transaction log.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	WalletID      string                 `json:"walletID"`
	Type          domain.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Date          time.Time              `json:"date"`
	Description   string                 `json:"description"`
}

// ToTransactionResponse converts a domain.WalletTransaction to its DTO
func ToTransactionResponse(t *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		WalletID:      t.WalletID,
		Type:          t.Type,
		Amount:        t.Amount,
		Date:          t.Date,
		Description:   t.Description,
	}
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListTransactionsResponse wraps the transaction log.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToListTransactionsResponse converts a slice of domain transactions.
func ToListTransactionsResponse(txns []domain.WalletTransaction) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(&t)
	}
	return ListTransactionsResponse{Transactions: res}
}
