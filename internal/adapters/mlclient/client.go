// Package mlclient talks to a model server that hosts the yield pipeline
// over HTTP.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
)

const (
	healthPath  = "/health"
	predictPath = "/predict"

	defaultTimeout = 5 * time.Second
	maxErrorBody   = 512
)

// PredictRequest is the body posted to the model server.
type PredictRequest struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// PredictResponse is the model server's answer, one value per row.
type PredictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Client implements prediction.Predictor against a remote model server.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout bounds each call to the model server.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Named("mlclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the remote predictor.
func (c *Client) Name() string {
	return "remote:" + c.baseURL
}

// Health probes the model server.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Predict posts the records in column order and returns one value per record.
func (c *Client) Predict(ctx context.Context, records []model.Record) ([]float64, error) {
	body := PredictRequest{Columns: model.Columns, Data: make([][]any, len(records))}
	for i, r := range records {
		body.Data[i] = r.Values()
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn(ctx, "model server rejected request",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(msg)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	if len(out.Predictions) != len(records) {
		return nil, fmt.Errorf("%w: got %d predictions for %d rows", ErrBadResponse, len(out.Predictions), len(records))
	}
	return out.Predictions, nil
}

// NewLoader returns a prediction.Loader that succeeds once the server is healthy.
func NewLoader(c *Client) prediction.Loader {
	return func(ctx context.Context) (prediction.Predictor, error) {
		if err := c.Health(ctx); err != nil {
			return nil, err
		}
		c.logger.Info(ctx, "model server reachable", logger.String("url", c.baseURL))
		return c, nil
	}
}
