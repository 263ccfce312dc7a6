// Package espinfo aggregates account-level directory data (sending domains,
// subaccounts, IPs) from every configured ESP into one cached snapshot.
package espinfo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ignite/mbr-dashboard/internal/cache"
	"github.com/ignite/mbr-dashboard/internal/mailgun"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/sendgrid"
	"github.com/ignite/mbr-dashboard/internal/sparkpost"
)

const cacheKey = "espinfo:accounts"

// AccountInfo is the combined directory snapshot across all ESPs. Each ESP
// section is nil when its client is not configured, and carries an error
// string instead of data when its fetch failed.
type AccountInfo struct {
	FetchedAt time.Time `json:"fetched_at"`

	SparkPost *SparkPostInfo `json:"sparkpost,omitempty"`
	Sendgrid  *SendgridInfo  `json:"sendgrid,omitempty"`
	Mailgun   *MailgunInfo   `json:"mailgun,omitempty"`
}

// SparkPostInfo is the SparkPost section of the snapshot.
type SparkPostInfo struct {
	SendingDomains []sparkpost.SendingDomain `json:"sending_domains,omitempty"`
	Subaccounts    []sparkpost.Subaccount    `json:"subaccounts,omitempty"`
	IPPools        []sparkpost.IPPool        `json:"ip_pools,omitempty"`
	Error          string                    `json:"error,omitempty"`
}

// SendgridInfo is the SendGrid section of the snapshot.
type SendgridInfo struct {
	Subusers []sendgrid.Subuser             `json:"subusers,omitempty"`
	Domains  []sendgrid.AuthenticatedDomain `json:"domains,omitempty"`
	IPs      []sendgrid.IPAddress           `json:"ips,omitempty"`
	Error    string                         `json:"error,omitempty"`
}

// MailgunInfo is the Mailgun section of the snapshot, merged across the US
// and EU endpoints.
type MailgunInfo struct {
	USDomains []mailgun.Domain `json:"us_domains,omitempty"`
	EUDomains []mailgun.Domain `json:"eu_domains,omitempty"`
	IPs       []string         `json:"ips,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Service fetches and caches the combined snapshot. Any client may be nil;
// its section is simply omitted.
type Service struct {
	sparkpost *sparkpost.Client
	sendgrid  *sendgrid.Client
	mailgunUS *mailgun.Client
	mailgunEU *mailgun.Client
	cache     cache.Cache
	ttl       time.Duration
}

// NewService creates the account-info service.
func NewService(sp *sparkpost.Client, sg *sendgrid.Client, mgUS, mgEU *mailgun.Client,
	c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		sparkpost: sp,
		sendgrid:  sg,
		mailgunUS: mgUS,
		mailgunEU: mgEU,
		cache:     c,
		ttl:       ttl,
	}
}

// Get returns the snapshot, serving from cache when fresh. forceRefresh
// bypasses the cache.
func (s *Service) Get(ctx context.Context, forceRefresh bool) (*AccountInfo, error) {
	if !forceRefresh {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var info AccountInfo
			if err := json.Unmarshal(data, &info); err == nil {
				return &info, nil
			}
			logger.Warn("espinfo cache entry corrupt, refetching")
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("espinfo cache read failed", "error", err)
		}
	}

	info := s.fetch(ctx)

	if data, err := json.Marshal(info); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
			logger.Warn("espinfo cache write failed", "error", err)
		}
	}
	return info, nil
}

// fetch pulls every configured ESP concurrently. Per-ESP failures land in
// that section's Error field so one vendor outage cannot blank the page.
func (s *Service) fetch(ctx context.Context) *AccountInfo {
	info := &AccountInfo{FetchedAt: time.Now().UTC()}

	var wg sync.WaitGroup
	if s.sparkpost != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info.SparkPost = s.fetchSparkPost(ctx)
		}()
	}
	if s.sendgrid != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info.Sendgrid = s.fetchSendgrid(ctx)
		}()
	}
	if s.mailgunUS != nil || s.mailgunEU != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info.Mailgun = s.fetchMailgun(ctx)
		}()
	}
	wg.Wait()

	return info
}

func (s *Service) fetchSparkPost(ctx context.Context) *SparkPostInfo {
	out := &SparkPostInfo{}

	domains, err := s.sparkpost.ListSendingDomains(ctx)
	if err != nil {
		logger.Warn("sparkpost directory fetch failed", "error", err)
		out.Error = err.Error()
		return out
	}
	out.SendingDomains = domains

	if subaccounts, err := s.sparkpost.ListSubaccounts(ctx); err != nil {
		logger.Warn("sparkpost subaccounts fetch failed", "error", err)
	} else {
		out.Subaccounts = subaccounts
	}
	if pools, err := s.sparkpost.ListIPPools(ctx); err != nil {
		logger.Warn("sparkpost ip pools fetch failed", "error", err)
	} else {
		out.IPPools = pools
	}
	return out
}

func (s *Service) fetchSendgrid(ctx context.Context) *SendgridInfo {
	out := &SendgridInfo{}

	subusers, err := s.sendgrid.ListSubusers(ctx)
	if err != nil {
		logger.Warn("sendgrid directory fetch failed", "error", err)
		out.Error = err.Error()
		return out
	}
	out.Subusers = subusers

	if domains, err := s.sendgrid.ListAuthenticatedDomains(ctx); err != nil {
		logger.Warn("sendgrid domains fetch failed", "error", err)
	} else {
		out.Domains = domains
	}
	if ips, err := s.sendgrid.ListIPs(ctx); err != nil {
		logger.Warn("sendgrid ips fetch failed", "error", err)
	} else {
		out.IPs = ips
	}
	return out
}

func (s *Service) fetchMailgun(ctx context.Context) *MailgunInfo {
	out := &MailgunInfo{}
	failures := 0

	if s.mailgunUS != nil {
		if domains, err := s.mailgunUS.ListDomains(ctx); err != nil {
			logger.Warn("mailgun US directory fetch failed", "error", err)
			out.Error = err.Error()
			failures++
		} else {
			out.USDomains = domains
		}
		if ips, err := s.mailgunUS.ListIPs(ctx); err != nil {
			logger.Warn("mailgun ips fetch failed", "error", err)
		} else {
			out.IPs = ips
		}
	}
	if s.mailgunEU != nil {
		if domains, err := s.mailgunEU.ListDomains(ctx); err != nil {
			logger.Warn("mailgun EU directory fetch failed", "error", err)
			if out.Error == "" {
				out.Error = err.Error()
			}
			failures++
		} else {
			out.EUDomains = domains
		}
	}

	// Only surface the error when every endpoint failed.
	if failures > 0 && (len(out.USDomains) > 0 || len(out.EUDomains) > 0) {
		out.Error = ""
	}
	return out
}
