// Package server wires the HTTP routes for the risk engine's API surface.
package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freightwatch-systems/risk-engine/internal/handlers"
)

// NewRouter constructs a ServeMux with the history API, DLQ inspection and
// operational routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/assessments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.ListAssessments(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// GET /api/v1/assessments/:shipment_id/latest
	mux.HandleFunc("/api/v1/assessments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/latest") {
			h.LatestAssessment(w, r)
		} else {
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	mux.HandleFunc("/api/v1/dlq/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.DLQStats(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/dlq/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.DLQEvents(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}
