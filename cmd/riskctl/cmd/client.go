package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/freightwatch-systems/risk-engine/internal/dlq"
	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// apiClient talks to the risk engine HTTP API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) get(path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) listAssessments(shipmentID, riskLevel string, page, limit int) (*models.ListAssessmentsResponse, error) {
	query := url.Values{}
	if shipmentID != "" {
		query.Set("shipment_id", shipmentID)
	}
	if riskLevel != "" {
		query.Set("risk_level", riskLevel)
	}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", limit))

	var resp models.ListAssessmentsResponse
	if err := c.get("/api/v1/assessments", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) latestAssessment(shipmentID string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.get("/api/v1/assessments/"+url.PathEscape(shipmentID)+"/latest", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *apiClient) dlqStats() (map[string]interface{}, error) {
	var stats map[string]interface{}
	if err := c.get("/api/v1/dlq/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *apiClient) dlqEvents(limit int) ([]dlq.FailedRecord, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))

	var resp struct {
		Events []dlq.FailedRecord `json:"events"`
		Count  int                `json:"count"`
	}
	if err := c.get("/api/v1/dlq/events", query, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}
