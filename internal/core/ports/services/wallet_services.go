package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

// WalletReaderSvc defines read operations for wallet data
type WalletReaderSvc interface {
	// GetWalletByID retrieves a specific wallet by its unique identifier.
	GetWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// GetWalletByUser retrieves the wallet a user holds for a given role.
	GetWalletByUser(ctx context.Context, userID string, role domain.WalletRole) (*domain.Wallet, error)

	// ListTransactions retrieves the wallet's transaction log in chronological order.
	ListTransactions(ctx context.Context, walletID string, limit int, offset int) ([]domain.WalletTransaction, error)
}

// WalletOperationsSvc defines the balance-affecting wallet operations.
// Every operation either applies fully (balance adjusted, one transaction
// appended) or not at all.
type WalletOperationsSvc interface {
	// Deposit credits amount to the wallet. Requires amount > 0.
	Deposit(ctx context.Context, walletID string, amount decimal.Decimal, userID string) (*domain.Wallet, error)

	// Withdraw debits amount from the wallet. Requires 0 < amount <= balance.
	Withdraw(ctx context.Context, walletID string, amount decimal.Decimal, userID string) (*domain.Wallet, error)

	// RecordPayment credits a received milestone payment to the wallet.
	RecordPayment(ctx context.Context, walletID string, amount decimal.Decimal, description string, userID string) (*domain.Wallet, error)

	// Debit takes a milestone payment out of the payer wallet. Requires balance >= amount.
	Debit(ctx context.Context, walletID string, amount decimal.Decimal, description string, userID string) (*domain.Wallet, error)
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletOperationsSvc
}
