// Package factors supplies per-shipment risk signals: the route risk score
// and the vendor reliability flag. The provider is the seam where external
// scoring sources (historical data, third-party APIs, ML models) plug in
// without touching the classifier.
package factors

import (
	"context"
	"errors"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

var (
	// ErrNotFound indicates no risk factors are known for the shipment.
	ErrNotFound = errors.New("risk factors not found")
)

// Provider looks up risk factors for a shipment. Implementations must be
// safe for concurrent use; the pipeline shares one provider across all
// workers and bounds every call with a deadline on ctx.
type Provider interface {
	Lookup(ctx context.Context, shipmentID string) (models.RiskFactors, error)
}

// Defaults returns the conservative substitute used when a lookup fails:
// a neutral mid-range route score and a vendor presumed reliable. The
// resulting assessment is tagged degraded so downstream consumers can
// discount its confidence.
func Defaults() models.RiskFactors {
	return models.RiskFactors{
		RouteRiskScore: 0.5,
		VendorReliable: true,
	}
}
