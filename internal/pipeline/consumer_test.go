package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	"github.com/freightwatch-systems/risk-engine/internal/models"
)

type mockDLQ struct {
	writeFunc func(ctx context.Context, subject string, payload []byte, cause error, reason string, deliveries int) error
	written   []dlqWrite
}

type dlqWrite struct {
	subject string
	payload []byte
	reason  string
}

func (m *mockDLQ) Write(ctx context.Context, subject string, payload []byte, cause error, reason string, deliveries int) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, subject, payload, cause, reason, deliveries); err != nil {
			return err
		}
	}
	m.written = append(m.written, dlqWrite{subject: subject, payload: payload, reason: reason})
	return nil
}

func delayMessage(t *testing.T, event models.PredictedDelayEvent) *messaging.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return &messaging.Message{
		Subject:    messaging.SubjectDelayPredicted,
		Data:       data,
		Timestamp:  time.Now(),
		Deliveries: 1,
	}
}

func newTestConsumer(provider *mockProvider, publisher *mockPublisher, queue *mockDLQ) *Consumer {
	p := newTestPipeline(provider, publisher, nil)
	return NewConsumer(p, queue, testLogger())
}

func TestConsumerHandle_Success(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockDLQ{}
	c := newTestConsumer(&mockProvider{}, publisher, queue)

	err := c.Handle(context.Background(), delayMessage(t, validEvent()))
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	assert.Empty(t, queue.written)
}

func TestConsumerHandle_InvalidJSON(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockDLQ{}
	c := newTestConsumer(&mockProvider{}, publisher, queue)

	msg := &messaging.Message{
		Subject:    messaging.SubjectDelayPredicted,
		Data:       []byte("{not json"),
		Deliveries: 1,
	}

	// Terminal: the record is captured and the message acked.
	err := c.Handle(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, queue.written, 1)
	assert.Equal(t, string(KindMalformedRecord), queue.written[0].reason)
	assert.Empty(t, publisher.published)
}

func TestConsumerHandle_MalformedRecord(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockDLQ{}
	c := newTestConsumer(&mockProvider{}, publisher, queue)

	event := validEvent()
	event.ShipmentID = ""

	err := c.Handle(context.Background(), delayMessage(t, event))
	require.NoError(t, err)
	require.Len(t, queue.written, 1)
	assert.Equal(t, string(KindMalformedRecord), queue.written[0].reason)
}

func TestConsumerHandle_RetryableError(t *testing.T) {
	publisher := &mockPublisher{
		publishFunc: func(ctx context.Context, subject string, data []byte) error {
			return errors.New("stream unavailable")
		},
	}
	queue := &mockDLQ{}
	c := newTestConsumer(&mockProvider{}, publisher, queue)

	// Returning the error leaves the record unacknowledged for redelivery;
	// nothing goes to the dead-letter queue.
	err := c.Handle(context.Background(), delayMessage(t, validEvent()))
	require.Error(t, err)
	assert.Empty(t, queue.written)
}

func TestConsumerHandle_DLQWriteFailureRedelivers(t *testing.T) {
	publisher := &mockPublisher{}
	queue := &mockDLQ{
		writeFunc: func(ctx context.Context, subject string, payload []byte, cause error, reason string, deliveries int) error {
			return errors.New("dlq stream unavailable")
		},
	}
	c := newTestConsumer(&mockProvider{}, publisher, queue)

	msg := &messaging.Message{
		Subject:    messaging.SubjectDelayPredicted,
		Data:       []byte("{not json"),
		Deliveries: 1,
	}

	// The original cause surfaces so the transport redelivers rather than
	// dropping the record.
	err := c.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Empty(t, queue.written)
}

func TestConsumerHandle_RedeliveryCounted(t *testing.T) {
	publisher := &mockPublisher{}
	c := newTestConsumer(&mockProvider{}, publisher, &mockDLQ{})

	msg := delayMessage(t, validEvent())
	msg.Deliveries = 3

	err := c.Handle(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
}
