package factors

import (
	"context"
	"sync"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// Static serves risk factors from an in-memory table. It backs tests and
// local runs without a database; unknown shipments fall back to an
// optional default or ErrNotFound.
type Static struct {
	mu         sync.RWMutex
	byShipment map[string]models.RiskFactors
	fallback   *models.RiskFactors
}

// NewStatic creates a provider serving the given table verbatim.
func NewStatic(byShipment map[string]models.RiskFactors) *Static {
	table := make(map[string]models.RiskFactors, len(byShipment))
	for k, v := range byShipment {
		table[k] = v
	}
	return &Static{byShipment: table}
}

// WithFallback makes unknown shipments resolve to f instead of ErrNotFound.
func (s *Static) WithFallback(f models.RiskFactors) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &f
	return s
}

// Set adds or replaces the factors for a shipment.
func (s *Static) Set(shipmentID string, f models.RiskFactors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byShipment[shipmentID] = f
}

// Lookup returns the stored factors, the fallback, or ErrNotFound.
func (s *Static) Lookup(ctx context.Context, shipmentID string) (models.RiskFactors, error) {
	if err := ctx.Err(); err != nil {
		return models.RiskFactors{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.byShipment[shipmentID]; ok {
		return f, nil
	}
	if s.fallback != nil {
		return *s.fallback, nil
	}
	return models.RiskFactors{}, ErrNotFound
}
