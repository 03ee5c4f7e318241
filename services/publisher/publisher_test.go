package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/promonotifier/internal/promo"
)

// MockPublisher implements Publisher for testing
type MockPublisher struct {
	events   []promo.Event
	err      error
	closed   bool
	closeErr error
}

var _ Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(_ context.Context, event promo.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *MockPublisher) Close() error {
	m.closed = true
	return m.closeErr
}

func TestMultiPublisher(t *testing.T) {
	failing := &MockPublisher{err: errors.New("broker down"), closeErr: errors.New("close failed")}
	healthy := &MockPublisher{}
	multi := NewMultiPublisher(failing, healthy)

	event := promo.CodeList{{Code: "CODE1"}}.Partition()
	err := multi.Publish(context.Background(), event)
	assert.ErrorContains(t, err, "broker down")

	// The healthy publisher still received the event
	assert.Equal(t, []promo.Event{event}, healthy.events)

	assert.ErrorContains(t, multi.Close(), "close failed")
	assert.True(t, failing.closed)
	assert.True(t, healthy.closed)
}

func TestMultiPublisherEmpty(t *testing.T) {
	multi := NewMultiPublisher()
	assert.NoError(t, multi.Publish(context.Background(), promo.Event{}))
	assert.NoError(t, multi.Close())
}
