// Package provider fetches batches of raw synthetic user records from the
// external random-data API.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mstamatov/userpipe-backend/internal/models"
)

// ErrSourceUnavailable marks a failed fetch (network error, timeout or
// non-2xx status). The pipeline treats it as recoverable: log, skip the
// cycle, retry on the next interval.
var ErrSourceUnavailable = errors.New("source unavailable")

// FetchTimeout bounds one provider call so the sync loop can never stall on
// a dead upstream.
const FetchTimeout = 10 * time.Second

// Client fetches record batches over HTTP. Transient connection errors and
// 5xx responses are retried a couple of times within the overall timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	c := rc.StandardClient()
	c.Timeout = FetchTimeout
	return &Client{baseURL: baseURL, http: c}
}

// FetchBatch requests size records. Any failure returns a nil batch wrapped
// in ErrSourceUnavailable; it never panics and never blocks past the timeout.
func (c *Client) FetchBatch(ctx context.Context, size int) ([]models.RawRecord, error) {
	url := fmt.Sprintf("%s?results=%d", c.baseURL, size)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var batch models.RawBatch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	return batch.Results, nil
}
