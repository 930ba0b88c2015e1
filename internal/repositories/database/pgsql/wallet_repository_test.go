package pgsql

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
)

var walletCols = []string{"wallet_id", "user_id", "role", "currency_code", "balance", "created_at", "created_by", "last_updated_at", "last_updated_by"}

func walletRows(walletID, userID string, role domain.WalletRole, balance decimal.Decimal, at time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(walletCols).
		AddRow(walletID, userID, role, "USD", balance, at, userID, at, userID)
}

func walletTxn(walletID string, txnType domain.TransactionType, amount decimal.Decimal, userID string, at time.Time) domain.WalletTransaction {
	return domain.WalletTransaction{
		TransactionID: "txn-1",
		WalletID:      walletID,
		Type:          txnType,
		Amount:        amount,
		Date:          at,
		Description:   "test transaction",
		AuditFields: domain.AuditFields{
			CreatedAt:     at,
			CreatedBy:     userID,
			LastUpdatedAt: at,
			LastUpdatedBy: userID,
		},
	}
}

func expectApplyTransaction(mock pgxmock.PgxPoolIface, txn domain.WalletTransaction, prior decimal.Decimal, at time.Time) {
	newBalance := prior.Add(txn.Amount)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE wallet_id = \$1 FOR UPDATE`).
		WithArgs(txn.WalletID).
		WillReturnRows(walletRows(txn.WalletID, txn.CreatedBy, domain.RoleClient, prior, at))
	mock.ExpectExec(`UPDATE wallets`).
		WithArgs(txn.WalletID, newBalance, txn.CreatedAt, txn.CreatedBy).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO wallet_transactions`).
		WithArgs(txn.TransactionID, txn.WalletID, txn.Type, txn.Amount, txn.Date, txn.Description,
			txn.CreatedAt, txn.CreatedBy, txn.LastUpdatedAt, txn.LastUpdatedBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
}

func TestApplyTransaction_DepositThenWithdrawRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxWalletRepository{BaseRepository: BaseRepository{Pool: mock}}
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	deposit := walletTxn("wallet-1", domain.Deposit, decimal.NewFromInt(500), "client-1", now)
	expectApplyTransaction(mock, deposit, decimal.NewFromInt(0), now)

	wallet, err := repo.ApplyTransaction(ctx, deposit)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(500)))

	withdrawal := walletTxn("wallet-1", domain.Withdrawal, decimal.NewFromInt(-200), "client-1", now)
	expectApplyTransaction(mock, withdrawal, decimal.NewFromInt(500), now)

	wallet, err = repo.ApplyTransaction(ctx, withdrawal)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(300)))

	// The balance after both operations equals the sum of the ledger rows.
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM wallet_transactions`).
		WithArgs("wallet-1").
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.NewFromInt(300)))

	sum, err := repo.SumTransactions(ctx, "wallet-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(wallet.Balance))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_RejectsOverdraw(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxWalletRepository{BaseRepository: BaseRepository{Pool: mock}}
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	withdrawal := walletTxn("wallet-1", domain.Withdrawal, decimal.NewFromInt(-250), "client-1", now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE wallet_id = \$1 FOR UPDATE`).
		WithArgs("wallet-1").
		WillReturnRows(walletRows("wallet-1", "client-1", domain.RoleClient, decimal.NewFromInt(100), now))
	mock.ExpectRollback()

	wallet, err := repo.ApplyTransaction(context.Background(), withdrawal)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Nil(t, wallet)
	// No balance update and no ledger row reached the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxWalletRepository{BaseRepository: BaseRepository{Pool: mock}}
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	deposit := walletTxn("wallet-missing", domain.Deposit, decimal.NewFromInt(50), "client-1", now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE wallet_id = \$1 FOR UPDATE`).
		WithArgs("wallet-missing").
		WillReturnRows(pgxmock.NewRows(walletCols))
	mock.ExpectRollback()

	_, err = repo.ApplyTransaction(context.Background(), deposit)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
