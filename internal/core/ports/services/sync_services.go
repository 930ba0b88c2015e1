package services

import "context"

// ApplicationSyncSvc imports the remote accepted-applications snapshot into
// the payment registry.
type ApplicationSyncSvc interface {
	// SyncAccepted fetches the applicant's accepted applications, flattens
	// their milestones into payment records and upserts them. Returns the
	// number of records imported.
	SyncAccepted(ctx context.Context, applicantUserID string) (int, error)
}
