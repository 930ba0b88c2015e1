package integrations

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCompleted is emitted after a milestone payment settles, so that
// other viewports observing the same wallet can refresh.
type PaymentCompleted struct {
	PaymentID   string          `json:"payment_id"`
	JobID       string          `json:"job_id"`
	PayerUserID string          `json:"payer_user_id"`
	PayeeUserID string          `json:"payee_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// EventPublisher publishes domain events to interested consumers. Publish
// failures must never unwind the state change they describe.
type EventPublisher interface {
	Publish(topic string, event any) error
}
