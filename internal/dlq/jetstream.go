// Package dlq routes records the pipeline cannot process to a JetStream
// dead-letter stream, where operators can inspect and replay them.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	natsclient "github.com/freightwatch-systems/risk-engine/internal/messaging/nats"
	"github.com/freightwatch-systems/risk-engine/internal/metrics"
)

// FailedRecord is the envelope stored on the dead-letter stream.
type FailedRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	Subject    string          `json:"subject"`
	Payload    json.RawMessage `json:"payload"`
	Error      string          `json:"error"`
	Reason     string          `json:"reason"`
	Deliveries int             `json:"deliveries"`
}

// Writer records failed events. A nil *JetStreamQueue is a valid no-op
// writer, so callers don't need to branch on DLQ being enabled.
type Writer interface {
	Write(ctx context.Context, subject string, payload []byte, cause error, reason string, deliveries int) error
}

// JetStreamQueue writes failed records to NATS JetStream for a centralized
// DLQ. Safe for use across multiple engine instances.
type JetStreamQueue struct {
	js      *natsclient.JetStreamClient
	stream  jetstream.Stream
	written uint64
}

// NewJetStreamQueue creates a DLQ backed by NATS JetStream.
func NewJetStreamQueue(ctx context.Context, js *natsclient.JetStreamClient) (*JetStreamQueue, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream client is nil")
	}

	stream, err := js.CreateOrUpdateStream(ctx, natsclient.RiskDLQStream)
	if err != nil {
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	return &JetStreamQueue{
		js:     js,
		stream: stream,
	}, nil
}

// Write records a failed event on the dead-letter stream under
// risk.dlq.<reason>.
func (q *JetStreamQueue) Write(ctx context.Context, subject string, payload []byte, cause error, reason string, deliveries int) error {
	if q == nil {
		return nil
	}

	failed := FailedRecord{
		Timestamp:  time.Now().UTC(),
		Subject:    subject,
		Payload:    json.RawMessage(payload),
		Reason:     reason,
		Deliveries: deliveries,
	}
	if cause != nil {
		failed.Error = cause.Error()
	}

	data, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	if err := q.js.Publish(ctx, messaging.DLQSubject(reason), data); err != nil {
		return fmt.Errorf("publish dlq entry: %w", err)
	}

	atomic.AddUint64(&q.written, 1)
	metrics.DLQWrittenTotal.WithLabelValues(reason).Inc()

	return nil
}

// Stats returns DLQ metrics from JetStream.
func (q *JetStreamQueue) Stats(ctx context.Context) map[string]interface{} {
	if q == nil {
		return map[string]interface{}{
			"enabled": false,
			"backend": "jetstream",
		}
	}

	info, err := q.stream.Info(ctx)
	if err != nil {
		return map[string]interface{}{
			"enabled":       true,
			"backend":       "jetstream",
			"written_local": atomic.LoadUint64(&q.written),
			"error":         err.Error(),
		}
	}

	return map[string]interface{}{
		"enabled":        true,
		"backend":        "jetstream",
		"written_local":  atomic.LoadUint64(&q.written),
		"total_messages": info.State.Msgs,
		"total_bytes":    info.State.Bytes,
		"first_seq":      info.State.FirstSeq,
		"last_seq":       info.State.LastSeq,
	}
}

// List returns failed records from the JetStream DLQ, newest-first ordering
// is not guaranteed; records come back in stream order.
func (q *JetStreamQueue) List(ctx context.Context, limit int) ([]FailedRecord, error) {
	if q == nil {
		return nil, fmt.Errorf("dlq not enabled")
	}

	if limit <= 0 {
		limit = 100
	}

	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: messaging.SubjectDLQPrefix + ".>",
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create list consumer: %w", err)
	}

	msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	var records []FailedRecord
	for msg := range msgs.Messages() {
		var failed FailedRecord
		if err := json.Unmarshal(msg.Data(), &failed); err != nil {
			continue
		}
		records = append(records, failed)
	}

	return records, nil
}

// Purge removes all records from the DLQ stream.
func (q *JetStreamQueue) Purge(ctx context.Context) error {
	if q == nil {
		return fmt.Errorf("dlq not enabled")
	}

	if err := q.stream.Purge(ctx); err != nil {
		return fmt.Errorf("purge dlq stream: %w", err)
	}

	return nil
}
