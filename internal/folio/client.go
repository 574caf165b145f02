// Package folio is the data-fetch layer for the upstream folio API, the PHP
// backend that owns users' mutual-fund holdings.
package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

const (
	holdingsPath = "/Portfolio/getFolioData.php"
	profilePath  = "/userDetails/getuserdetails.php"

	maxBodyBytes = 4 << 20
)

// Config locates the upstream API. It is passed in at construction; the client
// reads no globals or environment.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NoDataError reports that the upstream answered but had no folio for the user.
// It unwraps to apperrors.ErrNoPortfolioData.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string {
	if e.Message == "" {
		return apperrors.ErrNoPortfolioData.Error()
	}
	return fmt.Sprintf("%s: %s", apperrors.ErrNoPortfolioData, e.Message)
}

func (e *NoDataError) Unwrap() error {
	return apperrors.ErrNoPortfolioData
}

// Client calls the upstream folio API. Each call makes exactly one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The configured timeout is not
// applied to a caller-supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for upstream diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHoldings returns every holding record the upstream has for userID.
//
// Errors:
//   - apperrors.ErrUpstreamUnavailable when the request cannot be made
//   - apperrors.ErrUpstreamStatus on a non-2xx response
//   - apperrors.ErrUpstreamPayload when the body is not the expected JSON
//   - *NoDataError (apperrors.ErrNoPortfolioData) when Success is false or
//     statusData is not a list
func (c *Client) FetchHoldings(ctx context.Context, userID string) ([]model.HoldingRecord, error) {
	var resp folioResponse
	if err := c.post(ctx, "holdings", holdingsPath, userID, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || !isJSONArray(resp.StatusData) {
		c.logger.Debug().
			Str("user_id", userID).
			Str("message", resp.Message).
			Msg("folio API returned no holdings")
		return nil, &NoDataError{Message: resp.Message}
	}

	records, err := decodeRows(resp.StatusData)
	if err != nil {
		return nil, fmt.Errorf("%w: statusData: %v", apperrors.ErrUpstreamPayload, err)
	}
	return records, nil
}

// FetchProfile returns the upstream's userData object for userID.
func (c *Client) FetchProfile(ctx context.Context, userID string) (map[string]any, error) {
	var resp profileResponse
	if err := c.post(ctx, "profile", profilePath, userID, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.UserData == nil {
		msg := resp.Message
		if msg == "" {
			msg = "failed to load user profile"
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProfileNotFound, msg)
	}

	return resp.UserData, nil
}

// post sends {"userId": userID} to path and decodes the JSON answer into out.
func (c *Client) post(ctx context.Context, endpoint, path, userID string, out any) (err error) {
	start := time.Now()
	defer func() {
		c.observe(endpoint, start, err)
	}()

	body, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", apperrors.ErrUpstreamStatus, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamPayload, err)
	}

	return nil
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUpstreamStatus):
		outcome = "status"
	case errors.Is(err, apperrors.ErrUpstreamPayload):
		outcome = "payload"
	default:
		outcome = "unavailable"
	}

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
}
