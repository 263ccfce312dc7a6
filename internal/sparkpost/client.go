// Package sparkpost is a SparkPost account-directory client. The dashboard
// uses it to enrich reports with the sending domains, subaccounts and IP
// pools configured on the account.
package sparkpost

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

// Client is a SparkPost API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new SparkPost API client
func NewClient(cfg config.SparkPostConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes an HTTP request to the SparkPost API
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
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

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ListSendingDomains fetches every sending domain on the account, including
// those owned by subaccounts.
func (c *Client) ListSendingDomains(ctx context.Context) ([]SendingDomain, error) {
	body, err := c.doRequest(ctx, "/sending-domains", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching sending domains: %w", err)
	}

	var response sendingDomainsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing sending domains: %w", err)
	}
	return response.Results, nil
}

// ListSubaccounts fetches the subaccounts configured on the account.
func (c *Client) ListSubaccounts(ctx context.Context) ([]Subaccount, error) {
	body, err := c.doRequest(ctx, "/subaccounts", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching subaccounts: %w", err)
	}

	var response subaccountsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing subaccounts: %w", err)
	}
	return response.Results, nil
}

// ListIPPools fetches the dedicated IP pools and their IPs.
func (c *Client) ListIPPools(ctx context.Context) ([]IPPool, error) {
	params := url.Values{}
	params.Set("show_ips", strconv.FormatBool(true))

	body, err := c.doRequest(ctx, "/ip-pools", params)
	if err != nil {
		return nil, fmt.Errorf("fetching ip pools: %w", err)
	}

	var response ipPoolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing ip pools: %w", err)
	}
	return response.Results, nil
}
