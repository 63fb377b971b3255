package airline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
)

// ErrNotFound is returned when the airline API answers 404
var ErrNotFound = errors.New("not found upstream")

// StatusError is a non-2xx answer from the airline API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("airline API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("airline API returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the airline-operations API
type Client struct {
	baseURL    string
	keyHeader  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the configured airline API
func NewClient(cfg config.AirlineConfig, log zerolog.Logger) *Client {
	header := cfg.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyHeader:  header,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "airline_client").Logger(),
	}
}

// envelope is the {data:{...}} wrapper the API answers with
type envelope struct {
	Data *models.Profile `json:"data"`
}

// Profile returns the profile owning apiKey
func (c *Client) Profile(ctx context.Context, apiKey string) (*models.Profile, error) {
	return c.get(ctx, "/user", apiKey)
}

// Pilot looks up another pilot by id using apiKey for authorization
func (c *Client) Pilot(ctx context.Context, apiKey, pilotID string) (*models.Profile, error) {
	return c.get(ctx, "/pilots/"+url.PathEscape(pilotID), apiKey)
}

func (c *Client) get(ctx context.Context, path, apiKey string) (*models.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.keyHeader, apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("Airline API request failed")
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Airline API request completed")

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode airline response: %w", err)
	}
	if env.Data == nil {
		return nil, errors.New("airline response has no data")
	}
	return env.Data, nil
}
