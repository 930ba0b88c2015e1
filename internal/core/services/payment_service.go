package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
	"github.com/openlancer/payments-backend/internal/middleware"
)

// PaymentCompletedTopic is the event topic for settled milestone payments.
const PaymentCompletedTopic = "payment_completed"

// PaymentService implements the milestone payment registry. The paying
// transitions settle through the repository in one database transaction
// covering the status flip, the wallet balance and the ledger row.
type PaymentService struct {
	milestoneRepo portsrepo.MilestoneRepositoryWithTx
	walletRepo    portsrepo.WalletRepositoryWithTx
	kvStore       portsrepo.KVStore
	publisher     portsint.EventPublisher
	locks         *keyedMutex
}

func NewPaymentService(
	milestoneRepo portsrepo.MilestoneRepositoryWithTx,
	walletRepo portsrepo.WalletRepositoryWithTx,
	kvStore portsrepo.KVStore,
	publisher portsint.EventPublisher,
) *PaymentService {
	return &PaymentService{
		milestoneRepo: milestoneRepo,
		walletRepo:    walletRepo,
		kvStore:       kvStore,
		publisher:     publisher,
		locks:         newKeyedMutex(),
	}
}

// DoneOverrideKey composes the KV key remembering a freelancer's completion
// assertion for a milestone, consulted with highest precedence on import.
func DoneOverrideKey(userID, paymentID string) string {
	return "done:" + userID + ":" + paymentID
}

func (s *PaymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.MilestonePayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	payment, err := s.milestoneRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find payment in repository", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments returns payment records matching the filter. The OVERDUE
// status facet is resolved against filter.Now (defaulting to the current
// time); it never corresponds to a stored status.
func (s *PaymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.MilestonePayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch filter.Status {
	case domain.FilterAll, domain.FilterPending, domain.FilterDone, domain.FilterPaid, domain.FilterOverdue:
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", apperrors.ErrValidation, filter.Status)
	}
	if filter.Now.IsZero() {
		filter.Now = time.Now().UTC()
	}

	payments, err := s.milestoneRepo.ListPayments(ctx, filter)
	if err != nil {
		logger.Error("Failed to list payments from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		return []domain.MilestonePayment{}, nil
	}
	return payments, nil
}

// MarkDone asserts completion of a PENDING milestone by its freelancer.
// The done override is also written through the KV port so a later import
// of the remote snapshot keeps the completion.
func (s *PaymentService) MarkDone(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	unlock := s.locks.Lock(paymentID)
	defer unlock()

	payment, err := s.milestoneRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.FreelancerUserID != userID {
		return nil, fmt.Errorf("%w: payment %s does not belong to user", apperrors.ErrValidation, paymentID)
	}
	if !payment.CanMarkDone() {
		return nil, fmt.Errorf("%w: payment %s is %s, expected %s", apperrors.ErrInvalidTransition, paymentID, payment.Status, domain.StatusPending)
	}

	if err := s.milestoneRepo.MarkDone(ctx, paymentID, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Error("Failed to mark payment done in repository", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	// Remember the completion across imports. The KV store is last-write-wins
	// and non-transactional; a write failure must not undo the transition.
	if err := s.kvStore.Set(ctx, DoneOverrideKey(userID, paymentID), "true"); err != nil {
		logger.Warn("Failed to persist done override", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
	}

	logger.Info("Milestone marked done", slog.String("payment_id", paymentID), slog.String("user_id", userID))
	return s.milestoneRepo.FindPaymentByID(ctx, paymentID)
}

// ReceivePayment settles a completed milestone into the freelancer's wallet.
// Requires done == true and a not-yet-paid status; a second call fails with
// ErrInvalidTransition and moves no money.
func (s *PaymentService) ReceivePayment(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	unlock := s.locks.Lock(paymentID)
	defer unlock()

	payment, err := s.milestoneRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.FreelancerUserID != userID {
		return nil, fmt.Errorf("%w: payment %s does not belong to user", apperrors.ErrValidation, paymentID)
	}
	if !payment.CanMarkPaid() {
		return nil, fmt.Errorf("%w: payment %s is not ready for payment (status %s, done %t)", apperrors.ErrInvalidTransition, paymentID, payment.Status, payment.Done)
	}

	wallet, err := s.walletRepo.FindWalletByUser(ctx, userID, domain.RoleFreelancer)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no freelancer wallet for user %s", apperrors.ErrWalletNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find freelancer wallet: %w", err)
	}

	now := time.Now().UTC()
	txn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          domain.Payment,
		Amount:        payment.Amount,
		Date:          now,
		Description:   fmt.Sprintf("Payment received for %s - %s", payment.JobTitle, payment.Description),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	settled, err := s.milestoneRepo.SettlePayment(ctx, paymentID, txn, true, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidTransition) && !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to settle payment in repository", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	s.publishCompleted(ctx, settled)
	logger.Info("Milestone payment received", slog.String("payment_id", paymentID), slog.String("amount", payment.Amount.String()))
	return settled, nil
}

// PayNow settles a milestone from the client's wallet. The client viewpoint
// treats the button as completion plus payment combined, so PENDING settles
// directly; an insufficient balance leaves record and wallet untouched.
func (s *PaymentService) PayNow(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	unlock := s.locks.Lock(paymentID)
	defer unlock()

	payment, err := s.milestoneRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ClientUserID != userID {
		return nil, fmt.Errorf("%w: payment %s does not belong to user", apperrors.ErrValidation, paymentID)
	}
	if payment.Status == domain.StatusPaid {
		return nil, fmt.Errorf("%w: payment %s is already paid", apperrors.ErrInvalidTransition, paymentID)
	}

	wallet, err := s.walletRepo.FindWalletByUser(ctx, userID, domain.RoleClient)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no client wallet for user %s", apperrors.ErrWalletNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find client wallet: %w", err)
	}
	if wallet.Balance.LessThan(payment.Amount) {
		return nil, fmt.Errorf("%w: balance %s is less than payment amount %s", apperrors.ErrInsufficientFunds, wallet.Balance.String(), payment.Amount.String())
	}

	now := time.Now().UTC()
	txn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          domain.Payment,
		Amount:        payment.Amount.Neg(),
		Date:          now,
		Description:   fmt.Sprintf("Payment for %s - %s", payment.JobTitle, payment.Description),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	settled, err := s.milestoneRepo.SettlePayment(ctx, paymentID, txn, false, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidTransition) && !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to settle payment in repository", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	s.publishCompleted(ctx, settled)
	logger.Info("Milestone paid by client", slog.String("payment_id", paymentID), slog.String("amount", payment.Amount.String()))
	return settled, nil
}

// publishCompleted emits the settlement event. Publishing is best-effort:
// the payment has already committed, so failures are only logged.
func (s *PaymentService) publishCompleted(ctx context.Context, payment *domain.MilestonePayment) {
	if s.publisher == nil {
		return
	}
	event := portsint.PaymentCompleted{
		PaymentID:   payment.PaymentID,
		JobID:       payment.JobID,
		PayerUserID: payment.ClientUserID,
		PayeeUserID: payment.FreelancerUserID,
		Amount:      payment.Amount,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(PaymentCompletedTopic, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish payment completed event",
			slog.String("error", err.Error()), slog.String("payment_id", payment.PaymentID))
	}
}
