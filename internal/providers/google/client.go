// Package google talks to the Google Places, Geocoding and Routes APIs.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultPlacesBaseURL  = "https://maps.googleapis.com/maps/api/place"
	DefaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultRoutesURL      = "https://routes.googleapis.com/directions/v2:computeRoutes"
)

type Config struct {
	APIKey            string
	PlacesBaseURL     string
	GeocodeBaseURL    string
	RoutesURL         string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client is safe for concurrent use. All calls share one rate limiter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		logger.Warn("Google Maps API key is empty")
	}
	if cfg.PlacesBaseURL == "" {
		cfg.PlacesBaseURL = DefaultPlacesBaseURL
	}
	if cfg.GeocodeBaseURL == "" {
		cfg.GeocodeBaseURL = DefaultGeocodeBaseURL
	}
	if cfg.RoutesURL == "" {
		cfg.RoutesURL = DefaultRoutesURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		logger:     logger,
	}
}

// getJSON issues a rate limited GET and decodes a 200 response into dst.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Google API request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON issues a rate limited POST. The raw body and status are returned
// so the caller can interpret error payloads.
func (c *Client) postJSON(ctx context.Context, endpoint string, headers map[string]string, payload any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
