package domain

import "time"

// PaymentStatusFilter is the status facet of a payment listing. Besides the
// stored statuses it accepts OVERDUE, which is resolved as a predicate over
// due date and status rather than a stored value.
type PaymentStatusFilter string

const (
	FilterAll     PaymentStatusFilter = ""
	FilterPending PaymentStatusFilter = "PENDING"
	FilterDone    PaymentStatusFilter = "DONE"
	FilterPaid    PaymentStatusFilter = "PAID"
	FilterOverdue PaymentStatusFilter = "OVERDUE"
)

// PaymentFilter narrows a payment listing. Zero values mean "no constraint".
type PaymentFilter struct {
	UserID    string              // Owner to scope by, interpreted per Viewpoint
	Viewpoint WalletRole          // CLIENT scopes by client, FREELANCER by freelancer
	Status    PaymentStatusFilter // Stored status or OVERDUE
	Search    string              // Case-insensitive match over job title and counterparty name
	DueFrom   *time.Time
	DueTo     *time.Time
	Now       time.Time // Reference time for the OVERDUE predicate
	Limit     int
	Offset    int
}
