package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/freightwatch-systems/risk-engine/internal/messaging"
)

// JetStreamClient extends Client with JetStream persistence capabilities.
// All pipeline traffic goes through JetStream: the delay stream gives the
// engine durable at-least-once delivery with explicit acks, and the risk
// stream gives downstream consumers the same.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig defines a JetStream stream configuration.
type StreamConfig struct {
	Name      string
	Subjects  []string
	MaxAge    time.Duration
	MaxBytes  int64
	MaxMsgs   int64
	Retention jetstream.RetentionPolicy
	Storage   jetstream.StorageType
}

// ConsumerConfig defines a durable JetStream consumer configuration.
type ConsumerConfig struct {
	// Name is the durable consumer name.
	Name string

	// FilterSubject filters which messages this consumer receives.
	FilterSubject string

	// AckWait is time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxDeliver is maximum delivery attempts before giving up.
	MaxDeliver int

	// MaxAckPending bounds unacknowledged in-flight messages, and with it
	// the number of records processed concurrently.
	MaxAckPending int

	// NakDelay is how long a failed message waits before redelivery.
	NakDelay time.Duration
}

// DefaultConsumerConfig returns sensible defaults for a consumer.
func DefaultConsumerConfig(name, filterSubject string) ConsumerConfig {
	return ConsumerConfig{
		Name:          name,
		FilterSubject: filterSubject,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		MaxAckPending: 64,
		NakDelay:      5 * time.Second,
	}
}

// Predefined stream configurations for the FreightWatch bus.
var (
	// DelayEventsStream captures predicted-delay events for the engine.
	// WorkQueue retention: each record is owned by exactly one consumer
	// and removed once acknowledged.
	DelayEventsStream = StreamConfig{
		Name:      "SHIPMENT_DELAYS",
		Subjects:  []string{"shipments.delay.>"},
		MaxAge:    24 * time.Hour,
		MaxBytes:  512 * 1024 * 1024, // 512MB
		MaxMsgs:   1000000,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}

	// RiskEventsStream retains published assessments for downstream
	// consumers (alerting, dashboards). Limits retention keeps a rolling
	// window regardless of consumer interest.
	RiskEventsStream = StreamConfig{
		Name:      "SHIPMENT_RISK",
		Subjects:  []string{"shipments.risk.>"},
		MaxAge:    24 * time.Hour,
		MaxBytes:  512 * 1024 * 1024, // 512MB
		MaxMsgs:   1000000,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	}

	// RiskDLQStream captures records the pipeline could not process.
	RiskDLQStream = StreamConfig{
		Name:      "RISK_DLQ",
		Subjects:  []string{"risk.dlq.>"},
		MaxAge:    7 * 24 * time.Hour,
		MaxBytes:  100 * 1024 * 1024, // 100MB
		MaxMsgs:   100000,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	}
)

// NewJetStreamClient creates a JetStream-enabled client.
func NewJetStreamClient(cfg Config) (*JetStreamClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamClient{
		Client: client,
		js:     js,
	}, nil
}

// CreateOrUpdateStream creates or updates a stream.
func (c *JetStreamClient) CreateOrUpdateStream(ctx context.Context, cfg StreamConfig) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		MaxMsgs:   cfg.MaxMsgs,
		Retention: cfg.Retention,
		Storage:   cfg.Storage,
	}

	stream, err := c.js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Name, err)
	}

	return stream, nil
}

// CreateOrUpdateConsumer creates or updates a durable consumer with
// explicit acknowledgment.
func (c *JetStreamClient) CreateOrUpdateConsumer(ctx context.Context, streamName string, cfg ConsumerConfig) (jetstream.Consumer, error) {
	consumerCfg := jetstream.ConsumerConfig{
		Name:          cfg.Name,
		Durable:       cfg.Name,
		FilterSubject: cfg.FilterSubject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		MaxAckPending: cfg.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}

	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", streamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Name, err)
	}

	return consumer, nil
}

// Publish sends a message and waits for the stream to acknowledge the
// write. Implements messaging.Publisher.
func (c *JetStreamClient) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := c.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// StreamConsumer adapts a durable JetStream consumer to messaging.Consumer.
type StreamConsumer struct {
	client     *JetStreamClient
	streamName string
	cfg        ConsumerConfig
}

// NewStreamConsumer binds a consumer config to a stream. The stream and
// durable consumer must already exist (see CreateOrUpdateStream and
// CreateOrUpdateConsumer).
func (c *JetStreamClient) NewStreamConsumer(streamName string, cfg ConsumerConfig) *StreamConsumer {
	return &StreamConsumer{
		client:     c,
		streamName: streamName,
		cfg:        cfg,
	}
}

// Consume starts delivering messages to handler. A nil handler result acks
// the message (consumption committed); an error naks it with the configured
// delay so the broker redelivers. Cancelling ctx before the handler returns
// leaves in-flight messages unacknowledged, so they are redelivered — the
// mechanism that makes shutdown safe under at-least-once delivery.
func (sc *StreamConsumer) Consume(ctx context.Context, handler messaging.MessageHandler) (func(), error) {
	stream, err := sc.client.js.Stream(ctx, sc.streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", sc.streamName, err)
	}

	consumer, err := stream.Consumer(ctx, sc.cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer %s: %w", sc.cfg.Name, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject:    msg.Subject(),
			Data:       msg.Data(),
			Timestamp:  time.Now(),
			Deliveries: 1,
		}

		if meta, metaErr := msg.Metadata(); metaErr == nil {
			m.Timestamp = meta.Timestamp
			m.Deliveries = int(meta.NumDelivered)
		}

		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		if consumeCtx.Err() != nil {
			// Shutting down: leave the message unacked for redelivery.
			return
		}

		if err := handler(consumeCtx, m); err != nil {
			_ = msg.NakWithDelay(sc.cfg.NakDelay)
			return
		}

		_ = msg.Ack()
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}
