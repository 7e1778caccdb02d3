package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

type stubBreaker struct {
	open      bool
	successes int
	failures  int
}

func (b *stubBreaker) IsOpen() bool   { return b.open }
func (b *stubBreaker) RecordSuccess() { b.successes++ }
func (b *stubBreaker) RecordFailure() { b.failures++ }

func TestClient_PublishRejectedWhenBreakerOpen(t *testing.T) {
	breaker := &stubBreaker{open: true}
	client := &Client{breaker: breaker, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := client.Publish(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Zero(t, breaker.failures)
}

func TestClient_PublishAfterClose(t *testing.T) {
	breaker := &stubBreaker{}
	client := &Client{breaker: breaker, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.NoError(t, client.Close())

	err := client.Publish(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, breaker.failures)
}

type recordingAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func TestClient_HandleDelivery(t *testing.T) {
	client := &Client{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	tests := []struct {
		name       string
		handlerErr error
		wantAck    bool
		wantRequeu bool
	}{
		{name: "success acks", wantAck: true},
		{name: "malformed is dropped", handlerErr: fmt.Errorf("%w: bad json", ErrInvalidMessage)},
		{name: "failure requeues", handlerErr: errors.New("database unavailable"), wantRequeu: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			delivery := amqp091.Delivery{Acknowledger: ack, Body: []byte(`{}`)}

			client.handleDelivery(context.Background(), delivery, func(context.Context, []byte) error {
				return tt.handlerErr
			})

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeu, ack.requeued)
		})
	}
}
