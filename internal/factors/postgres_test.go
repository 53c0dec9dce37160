package factors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Note: Lookup tests against a live database require TEST_DATABASE_URL and
// the shipment_risk_factors table from migrations/. Only constructor
// validation runs unconditionally.

func TestNewPostgresProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name       string
		connString string
	}{
		{
			name:       "invalid scheme",
			connString: "invalid://connection",
		},
		{
			name:       "garbage input",
			connString: "not a connection string at all==",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPostgresProvider(context.Background(), tt.connString)
			require.Error(t, err)
		})
	}
}
