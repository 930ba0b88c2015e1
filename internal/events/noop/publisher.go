package noop

import (
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
)

// Publisher discards events. Used when no brokers are configured.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

var _ portsint.EventPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(string, any) error {
	return nil
}
