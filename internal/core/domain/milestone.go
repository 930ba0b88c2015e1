package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus indicates where a milestone payment sits in its lifecycle.
// Transitions are one-way: PENDING -> DONE -> PAID. PAID is terminal.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusDone    PaymentStatus = "DONE"
	StatusPaid    PaymentStatus = "PAID"
)

// MilestonePayment represents one separately payable unit of work within a
// job, together with its payment state. The PaymentID for records imported
// from the applications source is composed as "<jobID>_ms_<index>".
type MilestonePayment struct {
	PaymentID        string          `json:"paymentID"`      // Primary Key
	JobID            string          `json:"jobID"`          // Source job identifier
	MilestoneIndex   int             `json:"milestoneIndex"` // Position within the job
	JobTitle         string          `json:"jobTitle"`
	ClientName       string          `json:"clientName"` // Display name of the paying client
	ClientUserID     string          `json:"clientUserID"`
	FreelancerUserID string          `json:"freelancerUserID"`
	Description      string          `json:"description"` // Milestone description
	Amount           decimal.Decimal `json:"amount"`      // Non-negative
	DueDate          *time.Time      `json:"dueDate"`     // Nullable; source sometimes omits it
	Status           PaymentStatus   `json:"status"`
	Done             bool            `json:"done"` // Freelancer-asserted completion, prior to payment
	AuditFields
}

// CanMarkDone reports whether the freelancer may assert completion.
func (m *MilestonePayment) CanMarkDone() bool {
	return m.Status == StatusPending
}

// CanMarkPaid reports whether payment may be received for this milestone
// from the freelancer viewpoint: completion asserted, not yet paid.
func (m *MilestonePayment) CanMarkPaid() bool {
	return m.Done && m.Status != StatusPaid
}

// IsOverdue reports whether the milestone is past due and still unpaid.
// Overdue is derived for filtering only; it is never a stored status.
func (m *MilestonePayment) IsOverdue(now time.Time) bool {
	if m.DueDate == nil || m.Status == StatusPaid {
		return false
	}
	return m.DueDate.Before(now)
}
