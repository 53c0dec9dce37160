package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService    = "service"
	FieldShipmentID = "shipment_id"
	FieldRiskLevel  = "risk_level"
	FieldSubject    = "subject"
	FieldDeliveries = "deliveries"
	FieldError      = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// ShipmentID returns a slog attribute for the shipment identifier.
func ShipmentID(id string) slog.Attr {
	return slog.String(FieldShipmentID, id)
}

// RiskLevel returns a slog attribute for a classification verdict.
func RiskLevel(level string) slog.Attr {
	return slog.String(FieldRiskLevel, level)
}

// Subject returns a slog attribute for a bus subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}

// Error returns a slog attribute for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
