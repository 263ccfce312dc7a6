// Package mailgun is a Mailgun account-directory client covering both the
// US and EU API endpoints.
package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ignite/mbr-dashboard/internal/config"
	"github.com/ignite/mbr-dashboard/internal/pkg/httpretry"
)

const domainsPageSize = 100

// Client is a Mailgun API client for one regional endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	region     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a Mailgun client for the given regional base URL.
func NewClient(cfg config.MailgunConfig, baseURL, region string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		region:  region,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// Region returns the API region this client serves.
func (c *Client) Region() string { return c.region }

// doRequest makes an HTTP GET request with Basic Auth ("api" as username).
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ListDomains fetches every domain on the account, paging through results.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	var all []Domain
	for skip := 0; ; skip += domainsPageSize {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(domainsPageSize))
		params.Set("skip", strconv.Itoa(skip))

		body, err := c.doRequest(ctx, "/domains", params)
		if err != nil {
			return nil, fmt.Errorf("fetching domains (%s): %w", c.region, err)
		}

		var page domainsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing domains (%s): %w", c.region, err)
		}

		all = append(all, page.Items...)
		if len(page.Items) < domainsPageSize {
			return all, nil
		}
	}
}

// ListIPs fetches the dedicated IPs on the account.
func (c *Client) ListIPs(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("dedicated", "true")

	body, err := c.doRequest(ctx, "/ips", params)
	if err != nil {
		return nil, fmt.Errorf("fetching ips (%s): %w", c.region, err)
	}

	var response ipsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing ips (%s): %w", c.region, err)
	}
	return response.Items, nil
}
