package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openlancer/payments-backend/internal/core/domain"
	"github.com/openlancer/payments-backend/internal/jobs"
)

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *mockWalletRepo) FindWalletByUser(ctx context.Context, userID string, role domain.WalletRole) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *mockWalletRepo) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *mockWalletRepo) ListTransactions(ctx context.Context, walletID string, limit int, offset int) ([]domain.WalletTransaction, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletTransaction), args.Error(1)
}

func (m *mockWalletRepo) SumTransactions(ctx context.Context, walletID string) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockWalletRepo) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *mockWalletRepo) ApplyTransaction(ctx context.Context, txn domain.WalletTransaction) (*domain.Wallet, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *mockWalletRepo) FindWalletByIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, tx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *mockWalletRepo) ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction, newBalance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, txn, newBalance, userID, now)
	return args.Error(0)
}

func TestReconciler_FlagsMismatchedWallets(t *testing.T) {
	repo := new(mockWalletRepo)
	wallets := []domain.Wallet{
		{WalletID: "wallet-1", Balance: decimal.NewFromInt(1250)},
		{WalletID: "wallet-2", Balance: decimal.NewFromInt(500)},
	}

	repo.On("ListWallets", mock.Anything).Return(wallets, nil).Once()
	repo.On("SumTransactions", mock.Anything, "wallet-1").Return(decimal.NewFromInt(1250), nil).Once()
	// Ledger disagrees with the stored balance
	repo.On("SumTransactions", mock.Anything, "wallet-2").Return(decimal.NewFromInt(450), nil).Once()

	reconciler := jobs.NewReconciler(repo, slog.Default())
	mismatched, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, mismatched)
	repo.AssertExpectations(t)
}

func TestReconciler_AllBalanced(t *testing.T) {
	repo := new(mockWalletRepo)
	wallets := []domain.Wallet{
		{WalletID: "wallet-1", Balance: decimal.NewFromInt(100)},
	}

	repo.On("ListWallets", mock.Anything).Return(wallets, nil).Once()
	repo.On("SumTransactions", mock.Anything, "wallet-1").Return(decimal.NewFromInt(100), nil).Once()

	reconciler := jobs.NewReconciler(repo, slog.Default())
	mismatched, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	require.Zero(t, mismatched)
	repo.AssertExpectations(t)
}
