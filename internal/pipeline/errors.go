package pipeline

import "fmt"

// ErrorKind classifies pipeline processing failures. The kind decides the
// delivery outcome: retryable kinds leave the inbound record unacknowledged
// for redelivery, terminal kinds route it to the dead-letter queue.
type ErrorKind string

const (
	// KindMalformedRecord marks records failing basic validation. Terminal:
	// redelivery cannot fix a malformed payload.
	KindMalformedRecord ErrorKind = "malformed_record"

	// KindFactorLookupFailed marks a lookup failure the pipeline chose not
	// to absorb (currently only cancellation mid-lookup). Retryable.
	KindFactorLookupFailed ErrorKind = "factor_lookup_failed"

	// KindPublishFailed marks a rejected outbound write. Retryable: the
	// record stays unacknowledged and classification is recomputed on
	// redelivery (safe, the classifier is pure).
	KindPublishFailed ErrorKind = "publish_failed"
)

// ProcessingError is the typed failure returned by ProcessOne.
type ProcessingError struct {
	Kind       ErrorKind
	ShipmentID string
	Err        error
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: shipment %q", e.Kind, e.ShipmentID)
	}
	return fmt.Sprintf("%s: shipment %q: %v", e.Kind, e.ShipmentID, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Retryable reports whether redelivering the record can succeed.
func (e *ProcessingError) Retryable() bool {
	return e.Kind != KindMalformedRecord
}

func malformed(shipmentID, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{
		Kind:       KindMalformedRecord,
		ShipmentID: shipmentID,
		Err:        fmt.Errorf(format, args...),
	}
}
