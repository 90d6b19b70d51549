package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pulsestack/pulse-sentinel/internal/cache"
	"github.com/pulsestack/pulse-sentinel/internal/normalize"
)

// Client pulls raw heartbeat batches from a remote collector endpoint,
// serving a cached copy while it is fresh.
type Client struct {
	baseURL    string
	eventsPath string
	httpClient *http.Client
	cache      cache.Provider
	batchTTL   time.Duration
}

// NewClient constructs a Client targeting the configured collector. The cache
// provider may be nil.
func NewClient(baseURL, eventsPath string, timeout time.Duration, provider cache.Provider, batchTTL time.Duration) *Client {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		eventsPath: eventsPath,
		httpClient: &http.Client{Timeout: timeout},
		cache:      provider,
		batchTTL:   batchTTL,
	}
}

// FetchBatch retrieves the raw record batch from the collector.
func (c *Client) FetchBatch(ctx context.Context) ([]any, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("event source not configured")
	}

	key := "source:" + c.baseURL + c.eventsPath
	if data, err := c.cache.Get(ctx, key); err == nil {
		if records, err := normalize.DecodeBatch(data); err == nil {
			return records, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.eventsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read source response: %w", err)
	}

	records, err := normalize.DecodeBatch(data)
	if err != nil {
		return nil, err
	}

	if c.batchTTL > 0 {
		// Best effort; a failed cache write never fails the fetch.
		_ = c.cache.Set(ctx, key, data, c.batchTTL)
	}
	return records, nil
}
