package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/freightwatch-systems/risk-engine/internal/dlq"
	"github.com/freightwatch-systems/risk-engine/internal/logging"
	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	"github.com/freightwatch-systems/risk-engine/internal/metrics"
	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// Consumer bridges the message bus to the pipeline and turns processing
// outcomes into delivery decisions:
//
//   - success            -> nil (the transport acks; consumption committed)
//   - retryable failure  -> error (the transport naks; the record redelivers)
//   - terminal failure   -> dead-letter + nil (ack; redelivery cannot help)
//
// A failed dead-letter write falls back to redelivery so no record is ever
// silently dropped.
type Consumer struct {
	pipeline *Pipeline
	dlq      dlq.Writer
	logger   *logging.Logger
}

// NewConsumer creates the bridge. dlq may be a nil *dlq.JetStreamQueue,
// in which case terminal failures are logged and acked without capture.
func NewConsumer(p *Pipeline, dlqWriter dlq.Writer, logger *logging.Logger) *Consumer {
	return &Consumer{
		pipeline: p,
		dlq:      dlqWriter,
		logger:   logger,
	}
}

// Handle implements messaging.MessageHandler for the predicted-delay
// subscription.
func (c *Consumer) Handle(ctx context.Context, msg *messaging.Message) error {
	if msg.Deliveries > 1 {
		metrics.RedeliveriesTotal.Inc()
		c.logger.Info("processing redelivered record",
			logging.Subject(msg.Subject),
			logging.FieldDeliveries, msg.Deliveries,
		)
	}

	var event models.PredictedDelayEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		metrics.EventsTotal.WithLabelValues("malformed").Inc()
		return c.deadLetter(ctx, msg, err)
	}

	_, err := c.pipeline.ProcessOne(ctx, event)
	if err == nil {
		metrics.EventsTotal.WithLabelValues("assessed").Inc()
		return nil
	}

	var perr *ProcessingError
	if errors.As(err, &perr) && !perr.Retryable() {
		return c.deadLetter(ctx, msg, err)
	}

	metrics.EventsTotal.WithLabelValues("retried").Inc()
	c.logger.Warn("processing failed, leaving record for redelivery",
		logging.Subject(msg.Subject),
		logging.Error(err),
	)
	return err
}

func (c *Consumer) deadLetter(ctx context.Context, msg *messaging.Message, cause error) error {
	reason := string(KindMalformedRecord)
	var perr *ProcessingError
	if errors.As(cause, &perr) {
		reason = string(perr.Kind)
	}

	if err := c.dlq.Write(ctx, msg.Subject, msg.Data, cause, reason, msg.Deliveries); err != nil {
		c.logger.Error("dead-letter write failed, record will redeliver",
			logging.Subject(msg.Subject),
			logging.Error(err),
		)
		return cause
	}

	metrics.EventsTotal.WithLabelValues("dead_lettered").Inc()
	c.logger.Warn("record dead-lettered",
		logging.Subject(msg.Subject),
		logging.Error(cause),
		"reason", reason,
	)
	return nil
}
