// Package upstream retrieves remote payloads over HTTP with a bounded timeout.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/bus-tracker/internal/metrics"
)

// FetchError reports an unreachable source or a non-2xx response.
// StatusCode is 0 for transport failures.
type FetchError struct {
	SourceKey  string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d from %s", e.SourceKey, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: failed to fetch %s: %v", e.SourceKey, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client issues GET requests against upstream sources
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client whose requests give up after timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get fetches url and returns the response body. sourceKey labels errors,
// logs and metrics.
func (c *Client) Get(ctx context.Context, sourceKey, url string) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, sourceKey, url)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.UpstreamDuration.WithLabelValues(sourceKey, outcome).Observe(elapsed.Seconds())
	log.Debug().Str("source", sourceKey).Str("url", url).Dur("elapsed", elapsed).Str("outcome", outcome).Msg("Upstream fetch")
	return body, err
}

func (c *Client) get(ctx context.Context, sourceKey, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{SourceKey: sourceKey, URL: url, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{SourceKey: sourceKey, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			SourceKey:  sourceKey,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{SourceKey: sourceKey, URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}
