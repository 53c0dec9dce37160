// Package messaging defines standard subject names for the FreightWatch
// message bus.
package messaging

// Subject constants for the FreightWatch message bus.
// Follow the pattern: {domain}.{resource}.{qualifier}
const (
	// SubjectDelayPredicted carries upstream delay predictions per shipment.
	SubjectDelayPredicted = "shipments.delay.predicted"

	// SubjectRiskAssessed carries the risk verdicts published by this service.
	SubjectRiskAssessed = "shipments.risk.assessed"

	// SubjectDLQPrefix is the prefix for dead-lettered records; the failure
	// reason is appended (e.g. risk.dlq.malformed_record).
	SubjectDLQPrefix = "risk.dlq"
)

// Durable consumer names. Instances sharing a name share the work queue,
// each delivery going to exactly one instance.
const (
	ConsumerRiskEngine = "risk-engine"
)

// DLQSubject returns the dead-letter subject for a failure reason.
// Example: risk.dlq.malformed_record
func DLQSubject(reason string) string {
	return SubjectDLQPrefix + "." + reason
}
