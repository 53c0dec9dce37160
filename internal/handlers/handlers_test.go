package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightwatch-systems/risk-engine/internal/logging"
	"github.com/freightwatch-systems/risk-engine/internal/models"
	"github.com/freightwatch-systems/risk-engine/internal/repository"
)

type mockRepo struct {
	listFunc   func(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error)
	latestFunc func(ctx context.Context, shipmentID string) (*models.Assessment, error)
}

func (m *mockRepo) InsertAssessment(ctx context.Context, a *models.Assessment) error { return nil }

func (m *mockRepo) ListAssessments(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, req)
	}
	return nil, 0, nil
}

func (m *mockRepo) LatestByShipment(ctx context.Context, shipmentID string) (*models.Assessment, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, shipmentID)
	}
	return nil, repository.ErrAssessmentNotFound
}

func (m *mockRepo) Close() error { return nil }

func sampleAssessment() *models.Assessment {
	return &models.Assessment{
		ID:             "0198f4a2-0000-7000-8000-000000000001",
		ShipmentID:     "SHIP1234",
		PredictedETA:   time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
		DelayMinutes:   180,
		RouteRiskScore: 0.8,
		VendorReliable: false,
		RiskLevel:      models.RiskMedium,
		Reason:         "moderate delay with average risk factors",
		AssessedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestHandler(repo *mockRepo) *Handler {
	var r repository.Repository
	if repo != nil {
		r = repo
	}
	return NewHandler(r, nil, logging.New(logging.ParseLevel("error"), "text"))
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestListAssessments(t *testing.T) {
	var captured *models.ListAssessmentsRequest
	repo := &mockRepo{
		listFunc: func(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error) {
			captured = req
			return []*models.Assessment{sampleAssessment()}, 1, nil
		},
	}
	h := newTestHandler(repo)

	rec := httptest.NewRecorder()
	h.ListAssessments(rec, httptest.NewRequest("GET", "/api/v1/assessments?shipment_id=SHIP1234&risk_level=medium&page=2&limit=10", nil))

	require.Equal(t, 200, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "SHIP1234", captured.ShipmentID)
	assert.Equal(t, "MEDIUM", captured.RiskLevel)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 10, captured.Limit)

	var resp models.ListAssessmentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, "SHIP1234", resp.Assessments[0].ShipmentID)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestListAssessments_InvalidRiskLevel(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.ListAssessments(rec, httptest.NewRequest("GET", "/api/v1/assessments?risk_level=CRITICAL", nil))

	assert.Equal(t, 400, rec.Code)
}

func TestListAssessments_RepoError(t *testing.T) {
	repo := &mockRepo{
		listFunc: func(ctx context.Context, req *models.ListAssessmentsRequest) ([]*models.Assessment, int, error) {
			return nil, 0, errors.New("database down")
		},
	}
	h := newTestHandler(repo)

	rec := httptest.NewRecorder()
	h.ListAssessments(rec, httptest.NewRequest("GET", "/api/v1/assessments", nil))

	assert.Equal(t, 500, rec.Code)
}

func TestListAssessments_NoStore(t *testing.T) {
	h := newTestHandler(nil)

	rec := httptest.NewRecorder()
	h.ListAssessments(rec, httptest.NewRequest("GET", "/api/v1/assessments", nil))

	assert.Equal(t, 503, rec.Code)
}

func TestListAssessments_EmptyResultIsArray(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.ListAssessments(rec, httptest.NewRequest("GET", "/api/v1/assessments", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"assessments":[]`)
}

func TestLatestAssessment(t *testing.T) {
	repo := &mockRepo{
		latestFunc: func(ctx context.Context, shipmentID string) (*models.Assessment, error) {
			require.Equal(t, "SHIP1234", shipmentID)
			return sampleAssessment(), nil
		},
	}
	h := newTestHandler(repo)

	rec := httptest.NewRecorder()
	h.LatestAssessment(rec, httptest.NewRequest("GET", "/api/v1/assessments/SHIP1234/latest", nil))

	require.Equal(t, 200, rec.Code)

	var a models.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, models.RiskMedium, a.RiskLevel)
}

func TestLatestAssessment_NotFound(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.LatestAssessment(rec, httptest.NewRequest("GET", "/api/v1/assessments/UNKNOWN/latest", nil))

	assert.Equal(t, 404, rec.Code)
}

func TestLatestAssessment_MissingShipmentID(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.LatestAssessment(rec, httptest.NewRequest("GET", "/api/v1/assessments//latest", nil))

	assert.Equal(t, 404, rec.Code)
}

func TestDLQStats_Disabled(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.DLQStats(rec, httptest.NewRequest("GET", "/api/v1/dlq/stats", nil))

	require.Equal(t, 200, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, false, stats["enabled"])
}

func TestDLQEvents_Disabled(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := httptest.NewRecorder()
	h.DLQEvents(rec, httptest.NewRequest("GET", "/api/v1/dlq/events", nil))

	assert.Equal(t, 500, rec.Code)
}
