// Package pipeline glues one inbound predicted-delay record to one outbound
// risk assessment: validate, fetch factors, classify, publish, persist.
//
// The pipeline holds no cross-record mutable state; any number of records
// may be in flight concurrently. Delivery semantics (ack-after-publish,
// redelivery on failure) live in the Consumer bridge, driven by the error
// kinds returned from ProcessOne.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/freightwatch-systems/risk-engine/internal/classify"
	"github.com/freightwatch-systems/risk-engine/internal/factors"
	"github.com/freightwatch-systems/risk-engine/internal/logging"
	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	"github.com/freightwatch-systems/risk-engine/internal/metrics"
	"github.com/freightwatch-systems/risk-engine/internal/models"
	"github.com/freightwatch-systems/risk-engine/internal/repository"
)

const degradedNote = "; risk factors unavailable, classified with conservative defaults"

// Pipeline orchestrates one assessment per inbound record. Construct it
// explicitly with its collaborators; there is no process-wide instance.
type Pipeline struct {
	provider      factors.Provider
	publisher     messaging.Publisher
	store         repository.Repository
	logger        *logging.Logger
	lookupTimeout time.Duration

	// Injected for deterministic tests.
	now   func() time.Time
	newID func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore enables assessment history persistence. Without it the
// pipeline publishes only.
func WithStore(store repository.Repository) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides assessment ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a pipeline. lookupTimeout bounds every factor lookup; a
// lookup that exceeds it is treated as failed, never as an indefinite
// suspension.
func New(provider factors.Provider, publisher messaging.Publisher, logger *logging.Logger, lookupTimeout time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider:      provider,
		publisher:     publisher,
		logger:        logger,
		lookupTimeout: lookupTimeout,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         newAssessmentID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newAssessmentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ProcessOne runs a single record through the pipeline and returns the
// published assessment. On error, nothing has been published.
//
// Factor lookup failures (timeout, not-found, provider errors) do not fail
// the record: the pipeline substitutes conservative defaults, tags the
// assessment degraded and notes it in the reason. Only cancellation of the
// caller's context surfaces, so shutdown never acks a half-processed record.
func (p *Pipeline) ProcessOne(ctx context.Context, event models.PredictedDelayEvent) (*models.RiskAssessedEvent, error) {
	if err := p.validate(event); err != nil {
		metrics.EventsTotal.WithLabelValues("malformed").Inc()
		return nil, err
	}

	f, degraded, err := p.lookupFactors(ctx, event.ShipmentID)
	if err != nil {
		return nil, err
	}

	level, reason := classify.Classify(event.DelayMinutes, f.RouteRiskScore, f.VendorReliable)
	if degraded {
		reason += degradedNote
		metrics.DegradedAssessmentsTotal.Inc()
	}

	assessed := &models.RiskAssessedEvent{
		ID:           p.newID(),
		ShipmentID:   event.ShipmentID,
		PredictedETA: event.PredictedETA,
		RiskLevel:    level,
		Reason:       reason,
		Degraded:     degraded,
		AssessedAt:   p.now(),
	}

	if err := p.publish(ctx, assessed); err != nil {
		return nil, err
	}

	metrics.ClassificationsTotal.WithLabelValues(string(level)).Inc()
	p.persist(ctx, event, f, assessed)

	p.logger.Info("assessment published",
		logging.ShipmentID(event.ShipmentID),
		logging.RiskLevel(string(level)),
	)

	return assessed, nil
}

// validate enforces the inbound contract before any collaborator is
// touched. The is_delayed flag is informational only: a disagreement with
// delay_minutes is surfaced, not resolved, and classification proceeds on
// delay_minutes alone.
func (p *Pipeline) validate(event models.PredictedDelayEvent) error {
	if event.ShipmentID == "" {
		return malformed("", "shipment_id is required")
	}
	if event.DelayMinutes < 0 {
		return malformed(event.ShipmentID, "delay_minutes must be non-negative, got %d", event.DelayMinutes)
	}

	if event.IsDelayed != (event.DelayMinutes > 0) {
		metrics.DelayFlagMismatchTotal.Inc()
		p.logger.Warn("is_delayed flag disagrees with delay_minutes, classifying on delay_minutes",
			logging.ShipmentID(event.ShipmentID),
			"is_delayed", event.IsDelayed,
			"delay_minutes", event.DelayMinutes,
		)
	}

	return nil
}

// lookupFactors fetches risk factors under the configured deadline. Any
// provider failure degrades to the conservative defaults; only the parent
// context being done aborts the record.
func (p *Pipeline) lookupFactors(ctx context.Context, shipmentID string) (models.RiskFactors, bool, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
	defer cancel()

	start := time.Now()
	f, err := p.provider.Lookup(lookupCtx, shipmentID)
	metrics.FactorLookupDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		return f, false, nil
	}

	if ctx.Err() != nil {
		return models.RiskFactors{}, false, &ProcessingError{
			Kind:       KindFactorLookupFailed,
			ShipmentID: shipmentID,
			Err:        ctx.Err(),
		}
	}

	cause := "provider_error"
	switch {
	case errors.Is(err, factors.ErrNotFound):
		cause = "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		cause = "timeout"
	}
	metrics.FactorLookupFailures.WithLabelValues(cause).Inc()

	p.logger.Warn("factor lookup failed, substituting conservative defaults",
		logging.ShipmentID(shipmentID),
		logging.Error(err),
		"cause", cause,
	)

	return factors.Defaults(), true, nil
}

func (p *Pipeline) publish(ctx context.Context, assessed *models.RiskAssessedEvent) error {
	data, err := json.Marshal(assessed)
	if err != nil {
		// Marshal of a plain struct cannot fail in practice; treat it as
		// terminal rather than retrying forever.
		return malformed(assessed.ShipmentID, "marshal assessment: %v", err)
	}

	start := time.Now()
	err = p.publisher.Publish(ctx, messaging.SubjectRiskAssessed, data)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PublishFailures.Inc()
		return &ProcessingError{
			Kind:       KindPublishFailed,
			ShipmentID: assessed.ShipmentID,
			Err:        err,
		}
	}

	return nil
}

// persist is best-effort: the assessment is already on the bus, so a
// history write failure must not push the record back for redelivery.
func (p *Pipeline) persist(ctx context.Context, event models.PredictedDelayEvent, f models.RiskFactors, assessed *models.RiskAssessedEvent) {
	if p.store == nil {
		return
	}

	a := &models.Assessment{
		ID:             assessed.ID,
		ShipmentID:     assessed.ShipmentID,
		PredictedETA:   assessed.PredictedETA,
		DelayMinutes:   event.DelayMinutes,
		RouteRiskScore: f.RouteRiskScore,
		VendorReliable: f.VendorReliable,
		RiskLevel:      assessed.RiskLevel,
		Reason:         assessed.Reason,
		Degraded:       assessed.Degraded,
		AssessedAt:     assessed.AssessedAt,
	}

	if err := p.store.InsertAssessment(ctx, a); err != nil {
		metrics.StoreFailures.Inc()
		p.logger.Error("failed to persist assessment",
			logging.ShipmentID(assessed.ShipmentID),
			logging.Error(err),
		)
	}
}
