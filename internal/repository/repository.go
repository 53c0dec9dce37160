// Package repository persists the assessment history: every published risk
// verdict together with the inputs it was derived from.
package repository

import (
	"context"
	"errors"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// Repository defines the interface for assessment persistence.
type Repository interface {
	// InsertAssessment records a published assessment. Inserting the same
	// assessment ID twice is a no-op, keeping redelivered publishes
	// idempotent at the store.
	InsertAssessment(ctx context.Context, a *models.Assessment) error

	// ListAssessments returns a filtered, paginated slice of the history
	// plus the total match count.
	ListAssessments(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error)

	// LatestByShipment returns the most recently assessed record for a
	// shipment, or ErrAssessmentNotFound.
	LatestByShipment(ctx context.Context, shipmentID string) (*models.Assessment, error)

	// Utility
	Close() error
}
