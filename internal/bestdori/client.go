package bestdori

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Bestdori API root
	DefaultBaseURL = "https://bestdori.com/api"

	defaultAttempts   = 5
	defaultRetryDelay = 1 * time.Second
)

// ErrUnavailable is returned when the API could not be reached after the
// configured number of attempts. Callers skip the current cycle on it.
var ErrUnavailable = errors.New("bestdori: api unavailable")

// Client is a Bestdori API client with a bounded retry policy
type Client struct {
	baseURL    string
	httpClient *http.Client

	attempts   int
	retryDelay time.Duration
}

// NewClient creates a new Bestdori API client. baseURL may be empty to use
// the public API; attempts/retryDelay fall back to defaults when zero.
func NewClient(baseURL string, attempts int, retryDelay time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		attempts:   attempts,
		retryDelay: retryDelay,
	}
}

// FetchCatalog retrieves the full event catalog
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	var catalog Catalog
	if err := c.get(ctx, c.baseURL+"/events/all.5.json", &catalog); err != nil {
		return nil, fmt.Errorf("failed to fetch event catalog: %w", err)
	}
	return &catalog, nil
}

// FetchEventTop retrieves the current top-ranking data for an event
func (c *Client) FetchEventTop(ctx context.Context, server, eventID int) (*EventTop, error) {
	url := fmt.Sprintf("%s/eventtop/data?server=%d&event=%d&mid=0&latest=1", c.baseURL, server, eventID)
	var top EventTop
	if err := c.get(ctx, url, &top); err != nil {
		return nil, fmt.Errorf("failed to fetch event top: %w", err)
	}
	return &top, nil
}

// get performs a GET request, retrying transient failures a fixed number of
// times with a fixed delay before giving up with ErrUnavailable
func (c *Client) get(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.getOnce(ctx, url, result); err != nil {
			lastErr = err
			slog.Warn("API request failed", "url", url, "attempt", attempt, "max", c.attempts, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// getOnce performs a single GET request and decodes the JSON response
func (c *Client) getOnce(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
