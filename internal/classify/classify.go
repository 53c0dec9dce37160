// Package classify maps a predicted delay and its contextual risk factors
// to a discrete risk level with a human-readable justification.
//
// Classification is a pure function: no I/O, no state, no randomness. The
// same inputs always yield the same verdict and reason string.
package classify

import (
	"fmt"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// Thresholds for the ordered decision policy. All comparisons are strict:
// a delay of exactly 180 minutes is not a HIGH trigger, and a route risk
// score of exactly 0.7 is not either.
const (
	HighDelayMinutes   = 180
	MediumDelayMinutes = 60
	HighRouteRiskScore = 0.7
)

const (
	reasonMedium = "moderate delay with average risk factors"
	reasonLow    = "minor delay or low-risk route"
)

// Classify evaluates the decision policy in order, first match wins:
//
//  1. delay > 180 AND routeRiskScore > 0.7 AND vendor unreliable -> HIGH
//  2. delay > 60 -> MEDIUM
//  3. otherwise -> LOW
//
// A long delay on a risky route with a reliable vendor is MEDIUM, not
// HIGH. Callers validate the input domain
// (delayMinutes >= 0, routeRiskScore in [0,1]) before invoking; the
// function itself is total and never fails.
func Classify(delayMinutes int, routeRiskScore float64, vendorReliable bool) (models.RiskLevel, string) {
	if delayMinutes > HighDelayMinutes && routeRiskScore > HighRouteRiskScore && !vendorReliable {
		reason := fmt.Sprintf(
			"delay exceeds %d minutes on a route with risk score %.2f and an unreliable vendor",
			HighDelayMinutes, routeRiskScore,
		)
		return models.RiskHigh, reason
	}

	if delayMinutes > MediumDelayMinutes {
		return models.RiskMedium, reasonMedium
	}

	return models.RiskLow, reasonLow
}
