package publisher

import (
	"context"
	"errors"

	"sjsage522/promonotifier/internal/promo"
)

// Publisher represents a service for publishing new promo code events
type Publisher interface {
	// Publish sends one event describing newly discovered codes
	Publish(ctx context.Context, event promo.Event) error

	// Close closes the publisher connection
	Close() error
}

// MultiPublisher sends every event to all of its publishers
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a fan-out publisher
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// Publish publishes to every publisher, even when an earlier one fails
func (m *MultiPublisher) Publish(ctx context.Context, event promo.Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
