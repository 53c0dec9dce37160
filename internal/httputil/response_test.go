package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]string{"status": "ok"})

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 404, "assessment not found")

	assert.Equal(t, 404, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "assessment not found", body["error"])
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultVal int
		expected   int
	}{
		{name: "valid", input: "42", defaultVal: 10, expected: 42},
		{name: "empty uses default", input: "", defaultVal: 10, expected: 10},
		{name: "invalid uses default", input: "abc", defaultVal: 10, expected: 10},
		{name: "negative passes through", input: "-3", defaultVal: 10, expected: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIntParam(tt.input, tt.defaultVal))
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedLimit int
	}{
		{name: "defaults", query: "", expectedPage: 1, expectedLimit: 50},
		{name: "explicit", query: "page=3&limit=20", expectedPage: 3, expectedLimit: 20},
		{name: "limit clamped to max", query: "limit=5000", expectedPage: 1, expectedLimit: 1000},
		{name: "page floored at one", query: "page=0", expectedPage: 1, expectedLimit: 50},
		{name: "zero limit uses default", query: "limit=0", expectedPage: 1, expectedLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/assessments?"+tt.query, nil)
			page, limit := ParsePage(r, 50, 1000)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}
