// Package models defines the event and assessment types exchanged on the
// FreightWatch message bus and stored in the assessment history.
package models

import "time"

// RiskLevel is the categorical verdict produced by the classifier.
// The wire form is textual but the implementation only ever handles
// one of the three declared constants.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Valid reports whether l is one of the declared risk levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// PredictedDelayEvent is the inbound record consumed from the
// shipments.delay.predicted subject. It is immutable once received and
// consumed exactly once per pipeline invocation (though the transport
// may deliver it more than once).
type PredictedDelayEvent struct {
	ShipmentID   string    `json:"shipment_id"`
	PredictedETA time.Time `json:"predicted_eta"`
	DelayMinutes int       `json:"delay_minutes"`
	IsDelayed    bool      `json:"is_delayed"`
}

// RiskFactors carries the external risk signals fetched per assessment.
// RouteRiskScore is normalized to [0,1], higher meaning riskier.
// VendorReliable false means the carrier is flagged unreliable.
type RiskFactors struct {
	RouteRiskScore float64 `json:"route_risk_score"`
	VendorReliable bool    `json:"vendor_reliable"`
}

// RiskAssessedEvent is the outbound record published to the
// shipments.risk.assessed subject. ShipmentID and PredictedETA are copied
// verbatim from the inbound event so downstream consumers can key on the
// pair; Degraded marks assessments that ran on substituted default factors.
type RiskAssessedEvent struct {
	ID           string    `json:"id"`
	ShipmentID   string    `json:"shipment_id"`
	PredictedETA time.Time `json:"predicted_eta"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Reason       string    `json:"reason"`
	Degraded     bool      `json:"degraded,omitempty"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// Assessment is the persisted form of a published RiskAssessedEvent,
// retaining the inputs the verdict was derived from.
type Assessment struct {
	ID             string    `json:"id"`
	ShipmentID     string    `json:"shipment_id"`
	PredictedETA   time.Time `json:"predicted_eta"`
	DelayMinutes   int       `json:"delay_minutes"`
	RouteRiskScore float64   `json:"route_risk_score"`
	VendorReliable bool      `json:"vendor_reliable"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Reason         string    `json:"reason"`
	Degraded       bool      `json:"degraded"`
	AssessedAt     time.Time `json:"assessed_at"`
}

// ListAssessmentsRequest carries filters and pagination for the history API.
type ListAssessmentsRequest struct {
	ShipmentID string `json:"shipment_id"`
	RiskLevel  string `json:"risk_level"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListAssessmentsResponse is the paginated history API response.
type ListAssessmentsResponse struct {
	Assessments []*Assessment `json:"assessments"`
	Pagination  Pagination    `json:"pagination"`
}
