// Package neo is a client for the NASA Near Earth Object Web Service
// (NeoWs). It is the simulator's source of reference asteroid data.
package neo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/observability"
)

const (
	DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1/"

	// NeoWs refuses browse pages larger than this.
	MaxPageSize = 20
)

var (
	ErrNotFound = errors.New("neo: object not found")
	ErrNoAPIKey = errors.New("neo: NASA API key not configured")
)

// Client talks to NeoWs. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	clock      clockwork.Clock
	metrics    *observability.Metrics
}

// NewClient creates a NeoWs client. Transient failures (transport errors,
// 429 and 5xx responses) are retried up to maxRetries times.
func NewClient(apiKey, baseURL string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, clock clockwork.Clock) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if apiKey == "" {
		slog.Warn("NASA API key not found, real NEO data will be unavailable")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
		clock:      clock,
		metrics:    metrics,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchAsteroid looks one object up by its NeoWs id.
func (c *Client) FetchAsteroid(ctx context.Context, id string) (*models.Asteroid, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, models.Invalid("nasa_id", "must not be empty")
	}

	var raw json.RawMessage
	if err := c.get(ctx, "lookup", "neo/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	return Parse(raw, c.clock.Now())
}

// Page is one page of the NeoWs catalogue.
type Page struct {
	Number     int
	TotalPages int
	Asteroids  []*models.Asteroid
}

// Browse fetches one catalogue page. Objects that fail to parse are
// skipped and logged.
func (c *Client) Browse(ctx context.Context, page, size int) (*Page, error) {
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	params := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}

	var resp browseResponse
	if err := c.get(ctx, "browse", "neo/browse", params, &resp); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	out := &Page{
		Number:     resp.Page.Number,
		TotalPages: resp.Page.TotalPages,
		Asteroids:  make([]*models.Asteroid, 0, len(resp.NearEarthObjects)),
	}
	for _, raw := range resp.NearEarthObjects {
		a, err := Parse(raw, now)
		if err != nil {
			slog.Warn("failed to parse NEO data", "page", page, "error", err)
			continue
		}
		out.Asteroids = append(out.Asteroids, a)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	fullURL := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()

	start := c.clock.Now()
	op := func() error {
		return c.do(ctx, fullURL, out)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		slog.Warn("NASA API request failed, retrying", "endpoint", endpoint, "wait", wait, "error", err)
	})
	c.observe(endpoint, start, err)

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("nasa %s request: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("nasa API error: status %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("error decoding resp.Body: %w", err))
	}
	return nil
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	c.metrics.NEORequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.NEORequestDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}
