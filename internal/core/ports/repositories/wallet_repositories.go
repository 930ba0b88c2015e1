package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

// WalletReader defines read operations for wallet data
type WalletReader interface {
	// FindWalletByID retrieves a specific wallet by its unique identifier.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// FindWalletByUser retrieves the wallet a user holds for a given role.
	FindWalletByUser(ctx context.Context, userID string, role domain.WalletRole) (*domain.Wallet, error)

	// ListWallets retrieves all wallets, used by reconciliation.
	ListWallets(ctx context.Context) ([]domain.Wallet, error)

	// ListTransactions retrieves the wallet's transaction log in insertion order.
	ListTransactions(ctx context.Context, walletID string, limit int, offset int) ([]domain.WalletTransaction, error)

	// SumTransactions returns the sum of all signed transaction amounts for a wallet.
	SumTransactions(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// WalletWriter defines write operations for wallet data
type WalletWriter interface {
	// SaveWallet persists a new wallet.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// ApplyTransaction atomically adjusts the wallet balance by the signed
	// transaction amount and appends the transaction row. The wallet row is
	// locked for the duration; a mutation that would drive the balance
	// negative fails with apperrors.ErrInsufficientFunds and applies nothing.
	ApplyTransaction(ctx context.Context, txn domain.WalletTransaction) (*domain.Wallet, error)
}

// WalletTransactionSupport defines operations usable inside a caller-owned
// database transaction, for mutations that must commit together with other
// state (milestone settlement).
type WalletTransactionSupport interface {
	// FindWalletByIDForUpdate selects a wallet and locks it for update within tx.
	FindWalletByIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error)

	// ApplyTransactionInTx adjusts the balance and appends the transaction row within tx.
	ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction, newBalance decimal.Decimal, userID string, now time.Time) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	WalletTransactionSupport
}

// WalletRepositoryWithTx extends WalletRepositoryFacade with transaction capabilities
type WalletRepositoryWithTx interface {
	WalletRepositoryFacade
	TransactionManager
}
