package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

type PgxMilestoneRepository struct {
	BaseRepository
	walletRepo portsrepo.WalletRepositoryFacade
}

// newPgxMilestoneRepository creates a new repository for milestone payment
// records. The wallet repository is injected so settlement can move funds
// inside the same database transaction.
func newPgxMilestoneRepository(pool PgxPool, walletRepo portsrepo.WalletRepositoryFacade) portsrepo.MilestoneRepositoryWithTx {
	return &PgxMilestoneRepository{
		BaseRepository: BaseRepository{Pool: pool},
		walletRepo:     walletRepo,
	}
}

// Ensure PgxMilestoneRepository implements portsrepo.MilestoneRepositoryWithTx
var _ portsrepo.MilestoneRepositoryWithTx = (*PgxMilestoneRepository)(nil)

const milestoneColumns = `payment_id, job_id, milestone_index, job_title, client_name, client_user_id, freelancer_user_id, description, amount, due_date, status, done, created_at, created_by, last_updated_at, last_updated_by`

func scanMilestone(row pgx.Row) (*domain.MilestonePayment, error) {
	var m domain.MilestonePayment
	err := row.Scan(
		&m.PaymentID,
		&m.JobID,
		&m.MilestoneIndex,
		&m.JobTitle,
		&m.ClientName,
		&m.ClientUserID,
		&m.FreelancerUserID,
		&m.Description,
		&m.Amount,
		&m.DueDate,
		&m.Status,
		&m.Done,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindPaymentByID retrieves a payment record by its identifier.
func (r *PgxMilestoneRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.MilestonePayment, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestone_payments WHERE payment_id = $1;`
	payment, err := scanMilestone(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}
	return payment, nil
}

// ListPayments retrieves payment records matching the filter, ordered by due
// date then payment ID. The OVERDUE facet resolves to a predicate over due
// date and status; it is never a stored value.
func (r *PgxMilestoneRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.MilestonePayment, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + milestoneColumns + ` FROM milestone_payments WHERE 1=1`)

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		if filter.Viewpoint == domain.RoleClient {
			sb.WriteString(` AND client_user_id = ` + arg(filter.UserID))
		} else {
			sb.WriteString(` AND freelancer_user_id = ` + arg(filter.UserID))
		}
	}

	switch filter.Status {
	case domain.FilterAll:
	case domain.FilterOverdue:
		sb.WriteString(` AND due_date IS NOT NULL AND due_date < ` + arg(filter.Now))
		sb.WriteString(` AND status <> ` + arg(domain.StatusPaid))
	default:
		sb.WriteString(` AND status = ` + arg(string(filter.Status)))
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		p := arg(pattern)
		sb.WriteString(` AND (LOWER(job_title) LIKE ` + p + ` OR LOWER(client_name) LIKE ` + p + `)`)
	}

	if filter.DueFrom != nil {
		sb.WriteString(` AND due_date >= ` + arg(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		sb.WriteString(` AND due_date <= ` + arg(*filter.DueTo))
	}

	sb.WriteString(` ORDER BY due_date NULLS LAST, payment_id`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		sb.WriteString(` OFFSET ` + arg(filter.Offset))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.MilestonePayment
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading payment rows: %w", err)
	}
	return payments, nil
}

// UpsertPayments inserts imported payment records. Snapshot fields refresh
// on conflict, but local lifecycle state is kept: PAID never regresses and
// the done flag never clears.
func (r *PgxMilestoneRepository) UpsertPayments(ctx context.Context, payments []domain.MilestonePayment) error {
	if len(payments) == 0 {
		return nil
	}

	query := `
		INSERT INTO milestone_payments (` + milestoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (payment_id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			client_name = EXCLUDED.client_name,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			due_date = EXCLUDED.due_date,
			status = CASE WHEN milestone_payments.status = 'PAID' THEN milestone_payments.status ELSE EXCLUDED.status END,
			done = milestone_payments.done OR EXCLUDED.done,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`

	batch := &pgx.Batch{}
	for _, p := range payments {
		batch.Queue(query,
			p.PaymentID,
			p.JobID,
			p.MilestoneIndex,
			p.JobTitle,
			p.ClientName,
			p.ClientUserID,
			p.FreelancerUserID,
			p.Description,
			p.Amount,
			p.DueDate,
			p.Status,
			p.Done,
			p.CreatedAt,
			p.CreatedBy,
			p.LastUpdatedAt,
			p.LastUpdatedBy,
		)
	}

	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range payments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert payment batch: %w", err)
		}
	}
	return nil
}

// MarkDone transitions a PENDING record to DONE. The guard lives in the
// WHERE clause so a concurrent transition loses cleanly.
func (r *PgxMilestoneRepository) MarkDone(ctx context.Context, paymentID string, userID string) error {
	query := `
		UPDATE milestone_payments
		SET status = $2, done = TRUE, last_updated_at = NOW(), last_updated_by = $3
		WHERE payment_id = $1 AND status = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, paymentID, domain.StatusDone, userID, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment %s done: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing record from a wrong-state one.
		if _, err := r.FindPaymentByID(ctx, paymentID); err != nil {
			return err
		}
		return fmt.Errorf("%w: payment %s is not pending", apperrors.ErrInvalidTransition, paymentID)
	}
	return nil
}

// SettlePayment marks the record PAID and applies the wallet transaction in
// one database transaction. Guards are re-checked under the row locks.
func (r *PgxMilestoneRepository) SettlePayment(ctx context.Context, paymentID string, txn domain.WalletTransaction, requireDone bool, userID string) (*domain.MilestonePayment, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction is committed

	lockQuery := `SELECT ` + milestoneColumns + ` FROM milestone_payments WHERE payment_id = $1 FOR UPDATE;`
	payment, err := scanMilestone(tx.QueryRow(ctx, lockQuery, paymentID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock payment %s: %w", paymentID, err)
	}

	if payment.Status == domain.StatusPaid {
		return nil, fmt.Errorf("%w: payment %s is already paid", apperrors.ErrInvalidTransition, paymentID)
	}
	if requireDone && !payment.Done {
		return nil, fmt.Errorf("%w: payment %s has not been marked done", apperrors.ErrInvalidTransition, paymentID)
	}

	wallet, err := r.walletRepo.FindWalletByIDForUpdate(ctx, tx, txn.WalletID)
	if err != nil {
		return nil, err
	}
	newBalance := wallet.Balance.Add(txn.Amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s cannot cover %s", apperrors.ErrInsufficientFunds, wallet.Balance.String(), txn.Amount.Abs().String())
	}
	if err := r.walletRepo.ApplyTransactionInTx(ctx, tx, txn, newBalance, userID, txn.CreatedAt); err != nil {
		return nil, err
	}

	statusQuery := `
		UPDATE milestone_payments
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payment_id = $1;
	`
	if _, err := tx.Exec(ctx, statusQuery, paymentID, domain.StatusPaid, txn.CreatedAt, userID); err != nil {
		return nil, fmt.Errorf("failed to mark payment %s paid: %w", paymentID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	payment.Status = domain.StatusPaid
	payment.LastUpdatedAt = txn.CreatedAt
	payment.LastUpdatedBy = userID
	return payment, nil
}
