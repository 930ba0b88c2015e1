package repositories

import (
	"context"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

// MilestoneReader defines read operations for milestone payment records
type MilestoneReader interface {
	// FindPaymentByID retrieves a specific payment record by its identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.MilestonePayment, error)

	// ListPayments retrieves payment records matching the filter, ordered by
	// due date then payment ID.
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.MilestonePayment, error)
}

// MilestoneWriter defines write operations for milestone payment records
type MilestoneWriter interface {
	// UpsertPayments inserts imported payment records, updating mutable
	// snapshot fields on conflict. Terminal PAID status is never regressed.
	UpsertPayments(ctx context.Context, payments []domain.MilestonePayment) error

	// MarkDone transitions a PENDING record to DONE and sets the done flag.
	// Fails with apperrors.ErrNotFound or apperrors.ErrInvalidTransition.
	MarkDone(ctx context.Context, paymentID string, userID string) error
}

// MilestoneSettlementSupport covers the paying transitions, which must move
// wallet funds and flip the record to PAID in one database transaction.
type MilestoneSettlementSupport interface {
	// SettlePayment marks the record PAID and applies the wallet transaction
	// atomically. The status guard is re-checked under the row lock; a record
	// already PAID fails with apperrors.ErrInvalidTransition and moves no
	// money. A debit that would overdraw the wallet fails with
	// apperrors.ErrInsufficientFunds, leaving both record and wallet intact.
	SettlePayment(ctx context.Context, paymentID string, txn domain.WalletTransaction, requireDone bool, userID string) (*domain.MilestonePayment, error)
}

// MilestoneRepositoryFacade combines all milestone repository interfaces
type MilestoneRepositoryFacade interface {
	MilestoneReader
	MilestoneWriter
	MilestoneSettlementSupport
}

// MilestoneRepositoryWithTx extends MilestoneRepositoryFacade with transaction capabilities
type MilestoneRepositoryWithTx interface {
	MilestoneRepositoryFacade
	TransactionManager
}
