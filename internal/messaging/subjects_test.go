package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDLQSubject(t *testing.T) {
	assert.Equal(t, "risk.dlq.malformed_record", DLQSubject("malformed_record"))
	assert.Equal(t, "risk.dlq.publish_failed", DLQSubject("publish_failed"))
}

func TestSubjectsMatchStreamPrefixes(t *testing.T) {
	// Subjects feed streams captured by the shipments.delay.>, shipments.risk.>
	// and risk.dlq.> wildcards; a rename must keep the prefixes aligned.
	assert.Contains(t, SubjectDelayPredicted, "shipments.delay.")
	assert.Contains(t, SubjectRiskAssessed, "shipments.risk.")
	assert.Contains(t, DLQSubject("x"), SubjectDLQPrefix+".")
}
