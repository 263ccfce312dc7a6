package pulsation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mbr-dashboard/internal/health"
	"github.com/ignite/mbr-dashboard/internal/report"
)

func i64ptr(v int64) *int64 { return &v }

func TestProcessScoresRows(t *testing.T) {
	rows := []report.MetricRow{
		{
			FromDomain: "  News.Example.COM ", ESP: "Sparkpost", Region: "US",
			Sent: 1000, Delivered: 950,
			Bounces: i64ptr(30), SpamReports: i64ptr(3), Unsubscribes: i64ptr(5),
		},
	}

	got := Process(rows, "2026-08-30")
	require.Len(t, got, 1)
	d := got[0]

	assert.Equal(t, "2026-08-30", d.ReportDate)
	assert.Equal(t, "news.example.com", d.FromDomain)
	assert.Equal(t, int64(1000), d.Sent)

	assert.Equal(t, 95.0, d.DeliveryRate)
	assert.Equal(t, 3.0, d.BounceRate)
	assert.Equal(t, 0.3158, d.SpamRate)

	assert.Equal(t, health.RiskScore(d.DeliveryRate, d.SpamRate, d.BounceRate), d.RiskScore)
	assert.Equal(t, string(health.Classify(d.DeliveryRate, d.SpamRate)), d.Classification)
}

func TestProcessDropsBlankDomains(t *testing.T) {
	rows := []report.MetricRow{
		{FromDomain: "   ", Sent: 10, Delivered: 10},
		{FromDomain: "keep.com", Sent: 10, Delivered: 10},
	}

	got := Process(rows, "2026-08-30")
	require.Len(t, got, 1)
	assert.Equal(t, "keep.com", got[0].FromDomain)
}

func TestProcessMissingOptionalsCountZero(t *testing.T) {
	got := Process([]report.MetricRow{
		{FromDomain: "a.com", Sent: 100, Delivered: 95},
	}, "2026-08-30")
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Bounces)
	assert.Zero(t, got[0].SpamRate)
	assert.Equal(t, string(health.ClassGreen), got[0].Classification)
}

func TestProcessZeroSentDomainIsRed(t *testing.T) {
	got := Process([]report.MetricRow{
		{FromDomain: "dead.com", Sent: 0, Delivered: 0},
	}, "2026-08-30")
	require.Len(t, got, 1)
	// zero volume collapses every rate to 0, and 0% delivery classifies red
	assert.Zero(t, got[0].DeliveryRate)
	assert.Equal(t, string(health.ClassRed), got[0].Classification)
}
