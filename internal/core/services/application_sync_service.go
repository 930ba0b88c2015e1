package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
	"github.com/openlancer/payments-backend/internal/middleware"
)

// ApplicationSyncService imports the remote accepted-applications snapshot
// into the payment registry. Each job milestone becomes one payment record
// keyed "<jobID>_ms_<index>". Done overrides recorded through the KV port
// take precedence over the remote status.
type ApplicationSyncService struct {
	source        portsint.ApplicationSource
	milestoneRepo portsrepo.MilestoneRepositoryFacade
	kvStore       portsrepo.KVStore
}

func NewApplicationSyncService(
	source portsint.ApplicationSource,
	milestoneRepo portsrepo.MilestoneRepositoryFacade,
	kvStore portsrepo.KVStore,
) *ApplicationSyncService {
	return &ApplicationSyncService{
		source:        source,
		milestoneRepo: milestoneRepo,
		kvStore:       kvStore,
	}
}

func (s *ApplicationSyncService) SyncAccepted(ctx context.Context, applicantUserID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	apps, err := s.source.FetchAccepted(ctx, applicantUserID)
	if err != nil {
		// Fetch failures surface to the caller; an empty payment list is
		// never silently substituted for an error.
		if !errors.Is(err, apperrors.ErrRemoteFetch) && !errors.Is(err, apperrors.ErrTimeout) {
			logger.Error("Unexpected error fetching accepted applications", slog.String("error", err.Error()))
		}
		return 0, err
	}

	now := time.Now().UTC()
	var records []domain.MilestonePayment
	for _, app := range apps {
		for i, ms := range app.Milestones {
			record := domain.MilestonePayment{
				PaymentID:        fmt.Sprintf("%s_ms_%d", app.JobID, i),
				JobID:            app.JobID,
				MilestoneIndex:   i,
				JobTitle:         app.JobTitle,
				ClientName:       clientNameOrUnknown(app.ClientName),
				ClientUserID:     app.ClientUserID,
				FreelancerUserID: app.ApplicantUserID,
				Description:      ms.Description,
				Amount:           ms.Amount,
				DueDate:          parseDueDate(ms.DueDate),
				Status:           remoteStatus(ms.Status),
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     applicantUserID,
					LastUpdatedAt: now,
					LastUpdatedBy: applicantUserID,
				},
			}

			// A local done override always wins over the remote status, as
			// the original behavior has it.
			if s.hasDoneOverride(ctx, applicantUserID, record.PaymentID) {
				record.Status = domain.StatusDone
				record.Done = true
			}
			if record.Status == domain.StatusDone {
				record.Done = true
			}

			records = append(records, record)
		}
	}

	if len(records) == 0 {
		logger.Info("No accepted milestones to import", slog.String("applicant_user_id", applicantUserID))
		return 0, nil
	}

	if err := s.milestoneRepo.UpsertPayments(ctx, records); err != nil {
		logger.Error("Failed to upsert imported payments", slog.String("error", err.Error()), slog.Int("count", len(records)))
		return 0, fmt.Errorf("failed to import payments: %w", err)
	}

	logger.Info("Accepted applications imported",
		slog.String("applicant_user_id", applicantUserID),
		slog.Int("applications", len(apps)),
		slog.Int("milestones", len(records)),
	)
	return len(records), nil
}

func (s *ApplicationSyncService) hasDoneOverride(ctx context.Context, userID, paymentID string) bool {
	value, ok, err := s.kvStore.Get(ctx, DoneOverrideKey(userID, paymentID))
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to read done override", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return false
	}
	return ok && value == "true"
}

func clientNameOrUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

// remoteStatus maps the source's free-form status field; anything not
// recognized defaults to Pending.
func remoteStatus(status string) domain.PaymentStatus {
	switch strings.ToUpper(status) {
	case string(domain.StatusPaid):
		return domain.StatusPaid
	case string(domain.StatusDone):
		return domain.StatusDone
	default:
		return domain.StatusPending
	}
}

// parseDueDate accepts the source's YYYY-MM-DD due dates; absent or
// malformed values import as no due date.
func parseDueDate(value string) *time.Time {
	if value == "" || value == "N/A" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}
