package factors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// PostgresProvider reads risk factors from the shipment_risk_factors table,
// which upstream scoring jobs keep current. The pgx pool handles concurrent
// lookups from all pipeline workers without extra synchronization.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider connects a provider to PostgreSQL.
func NewPostgresProvider(ctx context.Context, connString string) (*PostgresProvider, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresProvider{pool: pool}, nil
}

// NewPostgresProviderFromPool wraps an existing pool, letting the service
// share one pool between the provider and the assessment repository.
func NewPostgresProviderFromPool(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// Lookup fetches the current factors for a shipment.
func (p *PostgresProvider) Lookup(ctx context.Context, shipmentID string) (models.RiskFactors, error) {
	query := `
		SELECT route_risk_score, vendor_reliable
		FROM shipment_risk_factors
		WHERE shipment_id = $1
	`

	var f models.RiskFactors
	err := p.pool.QueryRow(ctx, query, shipmentID).Scan(&f.RouteRiskScore, &f.VendorReliable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RiskFactors{}, ErrNotFound
		}
		return models.RiskFactors{}, fmt.Errorf("failed to query risk factors: %w", err)
	}

	return f, nil
}

// Close releases the connection pool.
func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
