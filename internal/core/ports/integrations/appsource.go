package integrations

import (
	"context"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

// ApplicationSource reads the accepted-applications snapshot from the remote
// job-application store. The core consumes it read-only and never writes back.
type ApplicationSource interface {
	// FetchAccepted returns every accepted application for the given
	// applicant. A deadline overrun maps to apperrors.ErrTimeout, any other
	// failure to apperrors.ErrRemoteFetch; an empty result is a valid answer,
	// not an error.
	FetchAccepted(ctx context.Context, applicantUserID string) ([]domain.AcceptedApplication, error)
}
