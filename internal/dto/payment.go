package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
)

// PaymentActionRequest identifies the acting user for a payment transition.
type PaymentActionRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// SyncPaymentsRequest triggers an import of the remote snapshot.
type SyncPaymentsRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// SyncPaymentsResponse reports how many records an import touched.
type SyncPaymentsResponse struct {
	Imported int `json:"imported"`
}

// PaymentResponse defines the data returned for a milestone payment record.
type PaymentResponse struct {
	PaymentID        string               `json:"paymentID"`
	JobID            string               `json:"jobID"`
	JobTitle         string               `json:"jobTitle"`
	ClientName       string               `json:"clientName"`
	ClientUserID     string               `json:"clientUserID"`
	FreelancerUserID string               `json:"freelancerUserID"`
	Milestone        string               `json:"milestone"`
	Amount           decimal.Decimal      `json:"amount"`
	DueDate          *time.Time           `json:"dueDate,omitempty"`
	Status           domain.PaymentStatus `json:"status"`
	Done             bool                 `json:"done"`
}

// ToPaymentResponse converts a domain.MilestonePayment to its DTO
func ToPaymentResponse(m *domain.MilestonePayment) PaymentResponse {
	return PaymentResponse{
		PaymentID:        m.PaymentID,
		JobID:            m.JobID,
		JobTitle:         m.JobTitle,
		ClientName:       m.ClientName,
		ClientUserID:     m.ClientUserID,
		FreelancerUserID: m.FreelancerUserID,
		Milestone:        m.Description,
		Amount:           m.Amount,
		DueDate:          m.DueDate,
		Status:           m.Status,
		Done:             m.Done,
	}
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	UserID    string `form:"userID"`
	Viewpoint string `form:"viewpoint" binding:"omitempty,oneof=CLIENT FREELANCER"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING DONE PAID OVERDUE"`
	Search    string `form:"search"`
	DueFrom   string `form:"dueFrom"`
	DueTo     string `form:"dueTo"`
	Limit     int    `form:"limit,default=50"`
	Offset    int    `form:"offset,default=0"`
}

// ToPaymentFilter converts the query params into a domain filter.
func (p ListPaymentsParams) ToPaymentFilter() (domain.PaymentFilter, error) {
	filter := domain.PaymentFilter{
		UserID:    p.UserID,
		Viewpoint: domain.WalletRole(p.Viewpoint),
		Status:    domain.PaymentStatusFilter(p.Status),
		Search:    p.Search,
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	var err error
	if filter.DueFrom, err = parseDateParam(p.DueFrom); err != nil {
		return domain.PaymentFilter{}, err
	}
	if filter.DueTo, err = parseDateParam(p.DueTo); err != nil {
		return domain.PaymentFilter{}, err
	}
	return filter, nil
}

func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid date (expected YYYY-MM-DD)", apperrors.ErrValidation, value)
	}
	return &t, nil
}

// ListPaymentsResponse wraps the list of payments.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// ToListPaymentsResponse converts a slice of domain payments.
func ToListPaymentsResponse(payments []domain.MilestonePayment) ListPaymentsResponse {
	res := make([]PaymentResponse, len(payments))
	for i, m := range payments {
		res[i] = ToPaymentResponse(&m)
	}
	return ListPaymentsResponse{Payments: res}
}
