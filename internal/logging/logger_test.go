package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	logger := New(slog.LevelInfo, "json")
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)

	textLogger := New(slog.LevelDebug, "text")
	assert.NotNil(t, textLogger)
}

func TestFields(t *testing.T) {
	assert.Equal(t, FieldShipmentID, ShipmentID("SHIP1234").Key)
	assert.Equal(t, "SHIP1234", ShipmentID("SHIP1234").Value.String())
	assert.Equal(t, "HIGH", RiskLevel("HIGH").Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
