// Package handlers implements the HTTP handlers for the assessment history
// and operational endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/freightwatch-systems/risk-engine/internal/dlq"
	"github.com/freightwatch-systems/risk-engine/internal/httputil"
	"github.com/freightwatch-systems/risk-engine/internal/logging"
	"github.com/freightwatch-systems/risk-engine/internal/models"
	"github.com/freightwatch-systems/risk-engine/internal/repository"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 1000
)

type Handler struct {
	repo   repository.Repository
	queue  *dlq.JetStreamQueue
	logger *logging.Logger
}

// NewHandler creates the API handler. repo may be nil when persistence is
// disabled; the history endpoints then return 503.
func NewHandler(repo repository.Repository, queue *dlq.JetStreamQueue, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		queue:  queue,
		logger: logger,
	}
}

// HealthCheck handles GET /healthz.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListAssessments handles GET /api/v1/assessments.
// Supported query parameters: shipment_id, risk_level, page, limit.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "assessment history not enabled")
		return
	}

	page, limit := httputil.ParsePage(r, defaultPageLimit, maxPageLimit)

	req := &models.ListAssessmentsRequest{
		ShipmentID: r.URL.Query().Get("shipment_id"),
		RiskLevel:  strings.ToUpper(r.URL.Query().Get("risk_level")),
		Page:       page,
		Limit:      limit,
	}

	if req.RiskLevel != "" && !models.RiskLevel(req.RiskLevel).Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "risk_level must be LOW, MEDIUM or HIGH")
		return
	}

	assessments, total, err := h.repo.ListAssessments(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to list assessments", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}

	if assessments == nil {
		assessments = []*models.Assessment{}
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	httputil.WriteJSON(w, http.StatusOK, &models.ListAssessmentsResponse{
		Assessments: assessments,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// LatestAssessment handles GET /api/v1/assessments/{shipment_id}/latest.
func (h *Handler) LatestAssessment(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "assessment history not enabled")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/assessments/")
	shipmentID := strings.TrimSuffix(path, "/latest")
	if shipmentID == "" || shipmentID == path {
		httputil.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	a, err := h.repo.LatestByShipment(r.Context(), shipmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssessmentNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "no assessment for shipment")
			return
		}
		h.logger.Error("failed to fetch latest assessment",
			logging.ShipmentID(shipmentID),
			logging.Error(err),
		)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch assessment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, a)
}

// DLQStats handles GET /api/v1/dlq/stats.
func (h *Handler) DLQStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.queue.Stats(r.Context()))
}

// DLQEvents handles GET /api/v1/dlq/events.
func (h *Handler) DLQEvents(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ParseIntParam(r.URL.Query().Get("limit"), 100)

	records, err := h.queue.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list dead-letter records", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list dead-letter records")
		return
	}

	if records == nil {
		records = []dlq.FailedRecord{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": records,
		"count":  len(records),
	})
}
