package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the underlying pool so the factor provider can share it.
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// InsertAssessment records a published assessment. ON CONFLICT DO NOTHING
// keeps re-publishes of the same assessment ID idempotent.
func (r *PostgresRepository) InsertAssessment(ctx context.Context, a *models.Assessment) error {
	query := `
		INSERT INTO assessments
			(id, shipment_id, predicted_eta, delay_minutes, route_risk_score,
			 vendor_reliable, risk_level, reason, degraded, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.ShipmentID, a.PredictedETA, a.DelayMinutes, a.RouteRiskScore,
		a.VendorReliable, a.RiskLevel, a.Reason, a.Degraded, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	return nil
}

// ListAssessments retrieves a filtered, paginated slice of the history.
func (r *PostgresRepository) ListAssessments(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if req.ShipmentID != "" {
		whereClause += fmt.Sprintf(" AND shipment_id = $%d", argPos)
		args = append(args, req.ShipmentID)
		argPos++
	}
	if req.RiskLevel != "" {
		whereClause += fmt.Sprintf(" AND risk_level = $%d", argPos)
		args = append(args, req.RiskLevel)
		argPos++
	}

	countQuery := "SELECT COUNT(*) FROM assessments " + whereClause
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	query := fmt.Sprintf(`
		SELECT id, shipment_id, predicted_eta, delay_minutes, route_risk_score,
		       vendor_reliable, risk_level, reason, degraded, assessed_at
		FROM assessments
		%s
		ORDER BY assessed_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		a := &models.Assessment{}
		if err := rows.Scan(
			&a.ID, &a.ShipmentID, &a.PredictedETA, &a.DelayMinutes, &a.RouteRiskScore,
			&a.VendorReliable, &a.RiskLevel, &a.Reason, &a.Degraded, &a.AssessedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("failed to read assessments: %w", rows.Err())
	}

	return assessments, total, nil
}

// LatestByShipment returns the most recent assessment for a shipment.
func (r *PostgresRepository) LatestByShipment(ctx context.Context, shipmentID string) (*models.Assessment, error) {
	query := `
		SELECT id, shipment_id, predicted_eta, delay_minutes, route_risk_score,
		       vendor_reliable, risk_level, reason, degraded, assessed_at
		FROM assessments
		WHERE shipment_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`

	a := &models.Assessment{}
	err := r.pool.QueryRow(ctx, query, shipmentID).Scan(
		&a.ID, &a.ShipmentID, &a.PredictedETA, &a.DelayMinutes, &a.RouteRiskScore,
		&a.VendorReliable, &a.RiskLevel, &a.Reason, &a.Degraded, &a.AssessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}

	return a, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
