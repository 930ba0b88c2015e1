package domain

import (
	"github.com/shopspring/decimal"
)

// WalletRole identifies which side of the marketplace a wallet belongs to.
type WalletRole string

const (
	RoleClient     WalletRole = "CLIENT"
	RoleFreelancer WalletRole = "FREELANCER"
)

// Wallet represents a per-user balance within the core domain.
// This is the primary representation used by services.
type Wallet struct {
	WalletID     string          `json:"walletID"`     // Primary Key (e.g., UUID)
	UserID       string          `json:"userID"`       // Owning user (NON-NULL)
	Role         WalletRole      `json:"role"`         // CLIENT or FREELANCER
	CurrencyCode string          `json:"currencyCode"` // ISO code, USD for now
	Balance      decimal.Decimal `json:"balance"`      // Persisted wallet balance
	AuditFields                  // Embed CreatedAt, CreatedBy, etc.
}
