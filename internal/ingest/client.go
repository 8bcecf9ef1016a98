package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lorcan2440/flood-warning-system/internal/observability"
)

// DefaultBaseURL is the Environment Agency real-time flood-monitoring API,
// https://environment.data.gov.uk/flood-monitoring/doc/reference.
const DefaultBaseURL = "https://environment.data.gov.uk/flood-monitoring"

// Client fetches feed JSON from the flood-monitoring API. It performs no
// retries and keeps no on-disk cache; callers own their polling policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. An empty baseURL selects the public API.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchStations retrieves all active level-monitoring stations of one kind
// with their full metadata.
func (c *Client) FetchStations(ctx context.Context, kind StationKind) (*StationFeed, error) {
	params := url.Values{
		"status":    {"Active"},
		"parameter": {"level"},
		"_view":     {"full"},
		"type":      {stationTypeParam(kind)},
	}

	var feed StationFeed
	if err := c.get(ctx, "stations", "/id/stations?"+params.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	c.logger.Info("fetched station feed", "kind", stationTypeParam(kind), "records", len(feed.Items))
	return &feed, nil
}

// FetchGauges retrieves all rainfall gauges with their full metadata.
func (c *Client) FetchGauges(ctx context.Context) (*GaugeFeed, error) {
	params := url.Values{
		"parameter": {"rainfall"},
		"_view":     {"full"},
	}

	var feed GaugeFeed
	if err := c.get(ctx, "gauges", "/id/stations?"+params.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("fetch gauges: %w", err)
	}
	c.logger.Info("fetched gauge feed", "records", len(feed.Items))
	return &feed, nil
}

// FetchLatestLevels retrieves the latest reading for every level measure.
func (c *Client) FetchLatestLevels(ctx context.Context) (*LatestFeed, error) {
	var feed LatestFeed
	if err := c.get(ctx, "levels", "/id/measures?parameter=level", &feed); err != nil {
		return nil, fmt.Errorf("fetch latest levels: %w", err)
	}
	return &feed, nil
}

// FetchLatestRainfall retrieves the latest reading for every rainfall
// measure.
func (c *Client) FetchLatestRainfall(ctx context.Context) (*LatestFeed, error) {
	var feed LatestFeed
	if err := c.get(ctx, "rainfall", "/id/measures?parameter=rainfall", &feed); err != nil {
		return nil, fmt.Errorf("fetch latest rainfall: %w", err)
	}
	return &feed, nil
}

// FetchReadings retrieves a measure's time series since the given instant,
// oldest first.
func (c *Client) FetchReadings(ctx context.Context, h Handle, since time.Time) (*ReadingsFeed, error) {
	measureID := h.MeasureID()
	if measureID == "" {
		return nil, fmt.Errorf("fetch readings: empty measure handle")
	}

	params := url.Values{
		"since":   {since.UTC().Format(time.RFC3339)},
		"_sorted": {""},
	}

	var feed ReadingsFeed
	// Measure IDs in the feed are absolute URLs into the same API.
	if err := c.getURL(ctx, "readings", measureID+"/readings?"+params.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	return &feed, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, v any) error {
	return c.getURL(ctx, endpoint, c.baseURL+path, v)
}

func (c *Client) getURL(ctx context.Context, endpoint, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.metrics.FeedFetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("feed API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("feed request complete", "url", fullURL, "duration", time.Since(start))
	return nil
}

func stationTypeParam(kind StationKind) string {
	switch kind {
	case KindTidal:
		return "Coastal"
	case KindGroundwater:
		return "Groundwater"
	default:
		return "SingleLevel"
	}
}
