// Package druid queries the Druid SQL brokers that hold raw email event
// data, one broker per sending region.
package druid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/mbr-dashboard/internal/pkg/httpretry"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
)

// Client speaks the Druid SQL HTTP API of a single broker.
type Client struct {
	baseURL string
	region  string
	http    httpretry.HTTPDoer
}

// NewClient creates a broker client. baseURL is the broker root, e.g.
// http://druid-us.internal:8082; queries post to /druid/v2/sql.
func NewClient(baseURL, region string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		region:  region,
		http:    httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 3),
	}
}

// Region returns the region this client serves.
func (c *Client) Region() string { return c.region }

// Query runs a SQL statement against the broker and decodes the result as an
// array of objects.
func (c *Client) Query(ctx context.Context, sqlText string) ([]sqlRow, error) {
	payload, err := json.Marshal(map[string]string{"query": sqlText})
	if err != nil {
		return nil, fmt.Errorf("marshal druid query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/druid/v2/sql", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create druid request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("druid query %s: %w", c.region, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("druid query %s: status %d: %s",
			c.region, resp.StatusCode, string(body))
	}

	var rows []sqlRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode druid response %s: %w", c.region, err)
	}

	logger.Debug("druid query complete",
		"region", c.region, "rows", len(rows), "elapsed", time.Since(start))
	return rows, nil
}
