package domain

import "github.com/shopspring/decimal"

// JobMilestone is one milestone as delivered by the remote applications
// source. Status and DueDate are optional there; absent values default to
// Pending and no due date during import.
type JobMilestone struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status,omitempty"`
	DueDate     string          `json:"dueDate,omitempty"`
}

// AcceptedApplication is a read-only snapshot of an accepted job
// application from the remote source. The core never writes back.
type AcceptedApplication struct {
	JobID           string         `json:"jobID"`
	JobTitle        string         `json:"jobTitle"`
	ClientName      string         `json:"clientName"`
	ClientUserID    string         `json:"clientUserID"`
	ApplicantUserID string         `json:"applicantUserID"`
	Milestones      []JobMilestone `json:"milestones"`
}
