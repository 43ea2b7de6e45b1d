package statuspage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to a hosted statuspage-style incident API. The base URL is
// per-source configuration, so it is a call argument rather than a field.
type Client struct {
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("statuspage API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

type Incident struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Impact    string `json:"impact"`
	CreatedAt string `json:"created_at"`
	Shortlink string `json:"shortlink"`
}

type incidentsPayload struct {
	Incidents []Incident `json:"incidents"`
}

// ListIncidents fetches the full incident list from {base}/incidents.json.
// The provider returns the whole history on every call.
func (c *Client) ListIncidents(ctx context.Context, baseURL string) ([]Incident, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/incidents.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	var payload incidentsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}
	return payload.Incidents, nil
}
