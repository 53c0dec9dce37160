// Package messaging provides abstractions for message broker communication.
// It defines the interfaces the pipeline uses to consume predicted-delay
// events and publish risk assessments without being coupled to a specific
// broker implementation.
package messaging

import (
	"context"
	"time"
)

// Message represents a message received from or sent to the message broker.
type Message struct {
	// Subject is the topic/channel the message was published to.
	Subject string

	// Data is the raw message payload.
	Data []byte

	// Metadata contains optional key-value pairs from message headers.
	Metadata map[string]string

	// Timestamp is when the message was published.
	Timestamp time.Time

	// Deliveries is how many times the broker has delivered this message,
	// starting at 1. Redeliveries above 1 indicate an earlier attempt that
	// did not acknowledge.
	Deliveries int
}

// MessageHandler processes a received message. Returning nil acknowledges
// the message; returning an error leaves it unacknowledged so the broker
// redelivers it (at-least-once delivery).
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher publishes messages to subjects with broker acknowledgment.
// The publish must not be considered committed until the call returns nil.
type Publisher interface {
	// Publish sends a message to the specified subject and waits for the
	// broker to acknowledge the write.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Consumer delivers messages from a durable subscription to a handler.
type Consumer interface {
	// Consume starts delivering messages to handler until the returned stop
	// function is called or ctx is cancelled. Handler outcome drives the
	// acknowledgment: nil commits consumption, an error triggers redelivery.
	Consume(ctx context.Context, handler MessageHandler) (stop func(), err error)
}
