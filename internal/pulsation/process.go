// Package pulsation runs the daily domain-health monitoring pipeline: it
// collects per-day metrics from the warehouse, scores each domain, and keeps
// a rolling history in Postgres for timeseries queries.
package pulsation

import (
	"strings"
	"time"

	"github.com/ignite/mbr-dashboard/internal/health"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// DailyRow is one scored (domain, region, esp) tuple for a report date.
type DailyRow struct {
	ReportDate string `json:"report_date"`
	FromDomain string `json:"from_domain"`
	Region     string `json:"region"`
	ESP        string `json:"esp"`

	Sent         int64 `json:"sent"`
	Delivered    int64 `json:"delivered"`
	Bounces      int64 `json:"bounces"`
	SoftBounces  int64 `json:"soft_bounces"`
	SpamReports  int64 `json:"spam_reports"`
	Unsubscribes int64 `json:"unsubscribes"`

	DeliveryRate float64 `json:"delivery_rate"`
	BounceRate   float64 `json:"bounce_rate"`
	SpamRate     float64 `json:"spam_rate"`
	UnsubRate    float64 `json:"unsub_rate"`

	RiskScore      float64 `json:"risk_score"`
	Classification string  `json:"classification"`
}

// Process scores raw warehouse rows for one report date. Domains are
// normalized to lowercase; blank domains are dropped.
func Process(rows []report.MetricRow, reportDate string) []DailyRow {
	out := make([]DailyRow, 0, len(rows))
	for _, r := range rows {
		domain := strings.ToLower(strings.TrimSpace(r.FromDomain))
		if domain == "" {
			continue
		}

		d := DailyRow{
			ReportDate:   reportDate,
			FromDomain:   domain,
			Region:       r.Region,
			ESP:          r.ESP,
			Sent:         r.Sent,
			Delivered:    r.Delivered,
			Bounces:      optCount(r.Bounces),
			SoftBounces:  optCount(r.SoftBounces),
			SpamReports:  optCount(r.SpamReports),
			Unsubscribes: optCount(r.Unsubscribes),
		}

		sent := float64(d.Sent)
		d.DeliveryRate = report.Rate(float64(d.Delivered), sent, 2)
		d.BounceRate = report.Rate(float64(d.Bounces), sent, 4)
		d.SpamRate = report.Rate(float64(d.SpamReports), float64(d.Delivered), 4)
		d.UnsubRate = report.Rate(float64(d.Unsubscribes), float64(d.Delivered), 4)

		d.RiskScore = health.RiskScore(d.DeliveryRate, d.SpamRate, d.BounceRate)
		d.Classification = string(health.Classify(d.DeliveryRate, d.SpamRate))

		out = append(out, d)
	}
	return out
}

// DateString formats a time as the canonical report-date string.
func DateString(t time.Time) string { return t.Format("2006-01-02") }

func optCount(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
