package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet and transaction data.
func newPgxWalletRepository(pool PgxPool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryWithTx
var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

const walletColumns = `wallet_id, user_id, role, currency_code, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.WalletID,
		&w.UserID,
		&w.Role,
		&w.CurrencyCode,
		&w.Balance,
		&w.CreatedAt,
		&w.CreatedBy,
		&w.LastUpdatedAt,
		&w.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// SaveWallet inserts a new wallet.
func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	query := `
		INSERT INTO wallets (wallet_id, user_id, role, currency_code, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		wallet.WalletID,
		wallet.UserID,
		wallet.Role,
		wallet.CurrencyCode,
		wallet.Balance,
		wallet.CreatedAt,
		wallet.CreatedBy,
		wallet.LastUpdatedAt,
		wallet.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet %s: %w", wallet.WalletID, err)
	}
	return nil
}

// FindWalletByID retrieves a wallet by its ID.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("wallet %s: %w", walletID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}
	return wallet, nil
}

// FindWalletByUser retrieves the wallet a user holds for a given role.
func (r *PgxWalletRepository) FindWalletByUser(ctx context.Context, userID string, role domain.WalletRole) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND role = $2;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, userID, role))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("wallet for user %s role %s: %w", userID, role, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// ListWallets retrieves all wallets.
func (r *PgxWalletRepository) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets ORDER BY wallet_id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading wallet rows: %w", err)
	}
	return wallets, nil
}

// ListTransactions retrieves the wallet's transaction log in insertion order.
func (r *PgxWalletRepository) ListTransactions(ctx context.Context, walletID string, limit int, offset int) ([]domain.WalletTransaction, error) {
	query := `
		SELECT transaction_id, wallet_id, type, amount, date, description, created_at, created_by, last_updated_at, last_updated_by
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at, transaction_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		err := rows.Scan(
			&t.TransactionID,
			&t.WalletID,
			&t.Type,
			&t.Amount,
			&t.Date,
			&t.Description,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading transaction rows: %w", err)
	}
	return txns, nil
}

// SumTransactions returns the sum of all signed transaction amounts for a wallet.
func (r *PgxWalletRepository) SumTransactions(ctx context.Context, walletID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE wallet_id = $1;`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for wallet %s: %w", walletID, err)
	}
	return sum, nil
}

// ApplyTransaction adjusts the wallet balance by the signed transaction
// amount and appends the transaction row, all within one database
// transaction with the wallet row locked.
func (r *PgxWalletRepository) ApplyTransaction(ctx context.Context, txn domain.WalletTransaction) (*domain.Wallet, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction is committed

	wallet, err := r.FindWalletByIDForUpdate(ctx, tx, txn.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance := wallet.Balance.Add(txn.Amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s cannot cover %s", apperrors.ErrInsufficientFunds, wallet.Balance.String(), txn.Amount.Abs().String())
	}

	if err := r.ApplyTransactionInTx(ctx, tx, txn, newBalance, txn.CreatedBy, txn.CreatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	wallet.Balance = newBalance
	wallet.LastUpdatedAt = txn.CreatedAt
	wallet.LastUpdatedBy = txn.CreatedBy
	return wallet, nil
}

// FindWalletByIDForUpdate selects a wallet and locks it for update within tx.
func (r *PgxWalletRepository) FindWalletByIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1 FOR UPDATE;`
	wallet, err := scanWallet(tx.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("wallet %s: %w", walletID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
	}
	return wallet, nil
}

// ApplyTransactionInTx updates the balance and appends the transaction row within tx.
func (r *PgxWalletRepository) ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction, newBalance decimal.Decimal, userID string, now time.Time) error {
	updateQuery := `
		UPDATE wallets
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, txn.WalletID, newBalance, now, userID); err != nil {
		return fmt.Errorf("failed to update balance for wallet %s: %w", txn.WalletID, err)
	}

	insertQuery := `
		INSERT INTO wallet_transactions (transaction_id, wallet_id, type, amount, date, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, insertQuery,
		txn.TransactionID,
		txn.WalletID,
		txn.Type,
		txn.Amount,
		txn.Date,
		txn.Description,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}
