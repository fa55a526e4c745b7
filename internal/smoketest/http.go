package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/cropyield/internal/adapters/http/api"
	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
)

// StatusError is returned for any non-200 answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// HTTPClient talks to one service instance.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	runID   string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL, runID string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		runID:   runID,
	}
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "health", nil, nil)
}

// Catalog fetches the selectable values.
func (c *HTTPClient) Catalog(ctx context.Context) (catalog.Snapshot, error) {
	var snap catalog.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/v1/catalog", "catalog", nil, &snap)
	return snap, err
}

// Predict submits one request. tag is appended to the run ID in X-Request-ID.
func (c *HTTPClient) Predict(ctx context.Context, tag string, req model.Request) (model.Result, error) {
	var res model.Result
	err := c.do(ctx, http.MethodPost, "/api/v1/predictions", tag, req, &res)
	return res, err
}

func (c *HTTPClient) do(ctx context.Context, method, path, tag string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(api.HeaderRequestID, c.runID+"-"+tag)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
