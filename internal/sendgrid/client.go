// Package sendgrid is a SendGrid account-directory client.
package sendgrid

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

const subusersPageSize = 500

// Client is a SendGrid API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new SendGrid API client
func NewClient(cfg config.SendgridConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes an HTTP GET request with Bearer auth.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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

// ListSubusers fetches every subuser on the account, paging through results.
func (c *Client) ListSubusers(ctx context.Context) ([]Subuser, error) {
	var all []Subuser
	for offset := 0; ; offset += subusersPageSize {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(subusersPageSize))
		params.Set("offset", strconv.Itoa(offset))

		body, err := c.doRequest(ctx, "/subusers", params)
		if err != nil {
			return nil, fmt.Errorf("fetching subusers: %w", err)
		}

		var page []Subuser
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing subusers: %w", err)
		}

		all = append(all, page...)
		if len(page) < subusersPageSize {
			return all, nil
		}
	}
}

// ListAuthenticatedDomains fetches the authenticated sending domains.
func (c *Client) ListAuthenticatedDomains(ctx context.Context) ([]AuthenticatedDomain, error) {
	body, err := c.doRequest(ctx, "/whitelabel/domains", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching authenticated domains: %w", err)
	}

	var domains []AuthenticatedDomain
	if err := json.Unmarshal(body, &domains); err != nil {
		return nil, fmt.Errorf("parsing authenticated domains: %w", err)
	}
	return domains, nil
}

// ListIPs fetches the IP addresses on the account.
func (c *Client) ListIPs(ctx context.Context) ([]IPAddress, error) {
	body, err := c.doRequest(ctx, "/ips", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching ips: %w", err)
	}

	var ips []IPAddress
	if err := json.Unmarshal(body, &ips); err != nil {
		return nil, fmt.Errorf("parsing ips: %w", err)
	}
	return ips, nil
}
