package services

import (
	"context"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

// PaymentReaderSvc defines read operations for the payment registry
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a specific payment record.
	GetPaymentByID(ctx context.Context, paymentID string) (*domain.MilestonePayment, error)

	// ListPayments retrieves payment records matching the filter.
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.MilestonePayment, error)
}

// PaymentActionSvc defines the user-invocable payment transitions.
type PaymentActionSvc interface {
	// MarkDone asserts freelancer completion of a PENDING milestone.
	MarkDone(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error)

	// ReceivePayment settles a DONE milestone into the freelancer wallet.
	ReceivePayment(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error)

	// PayNow settles a milestone from the client wallet; the client viewpoint
	// has no separate DONE stage, paying directly from PENDING.
	PayNow(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error)
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentActionSvc
}
