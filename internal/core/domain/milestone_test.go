package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openlancer/payments-backend/internal/core/domain"
)

func TestMilestonePayment_CanMarkDone(t *testing.T) {
	tests := []struct {
		name    string
		payment domain.MilestonePayment
		want    bool
	}{
		{
			name:    "pending milestone can be marked done",
			payment: domain.MilestonePayment{Status: domain.StatusPending},
			want:    true,
		},
		{
			name:    "done milestone cannot be marked done again",
			payment: domain.MilestonePayment{Status: domain.StatusDone, Done: true},
			want:    false,
		},
		{
			name:    "paid milestone cannot be marked done",
			payment: domain.MilestonePayment{Status: domain.StatusPaid, Done: true},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payment.CanMarkDone())
		})
	}
}

func TestMilestonePayment_CanMarkPaid(t *testing.T) {
	tests := []struct {
		name    string
		payment domain.MilestonePayment
		want    bool
	}{
		{
			name:    "done milestone can be paid",
			payment: domain.MilestonePayment{Status: domain.StatusDone, Done: true},
			want:    true,
		},
		{
			name:    "pending milestone without done flag cannot be paid",
			payment: domain.MilestonePayment{Status: domain.StatusPending},
			want:    false,
		},
		{
			name:    "paid milestone cannot be paid again",
			payment: domain.MilestonePayment{Status: domain.StatusPaid, Done: true},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payment.CanMarkPaid())
		})
	}
}

func TestMilestonePayment_IsOverdue(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	past := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		payment domain.MilestonePayment
		want    bool
	}{
		{
			name:    "past due and pending is overdue",
			payment: domain.MilestonePayment{DueDate: &past, Status: domain.StatusPending},
			want:    true,
		},
		{
			name:    "past due but done is still overdue",
			payment: domain.MilestonePayment{DueDate: &past, Status: domain.StatusDone, Done: true},
			want:    true,
		},
		{
			name:    "past due but paid is not overdue",
			payment: domain.MilestonePayment{DueDate: &past, Status: domain.StatusPaid, Done: true},
			want:    false,
		},
		{
			name:    "future due date is not overdue",
			payment: domain.MilestonePayment{DueDate: &future, Status: domain.StatusPending},
			want:    false,
		},
		{
			name:    "no due date is never overdue",
			payment: domain.MilestonePayment{DueDate: nil, Status: domain.StatusPending},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payment.IsOverdue(now))
		})
	}
}
