package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainRows() []MetricRow {
	return []MetricRow{
		{FromDomain: "a.com", ESP: "Sparkpost", Region: "US", Sent: 1000, Delivered: 950,
			Bounces: i64ptr(30), SpamReports: i64ptr(3), Unsubscribes: i64ptr(5),
			UniqueUserOpens: i64ptr(80), UniquePrefetchOpens: i64ptr(20),
			UniqueProxyOpens: i64ptr(15), UniqueClicks: i64ptr(30)},
		{FromDomain: "a.com", ESP: "Mailgun", Region: "EU", Sent: 500, Delivered: 480,
			Bounces: i64ptr(10), SpamReports: i64ptr(1), Unsubscribes: i64ptr(2),
			UniqueUserOpens: i64ptr(40), UniquePrefetchOpens: i64ptr(10),
			UniqueProxyOpens: i64ptr(5), UniqueClicks: i64ptr(12)},
		{FromDomain: "b.com", ESP: "Sparkpost", Region: "US", Sent: 200, Delivered: 190,
			Bounces: i64ptr(5), SpamReports: i64ptr(1), Unsubscribes: i64ptr(1),
			UniqueUserOpens: i64ptr(15), UniquePrefetchOpens: i64ptr(3),
			UniqueProxyOpens: i64ptr(2), UniqueClicks: i64ptr(4)},
		// delivered nothing; must be dropped from the domain report
		{FromDomain: "dead.com", ESP: "Sendgrid", Region: "US", Sent: 50, Delivered: 0},
	}
}

func TestBuildDomainReport(t *testing.T) {
	rep := BuildDomainReport(domainRows(), "2026-01-01", "2026-02-01")

	assert.Equal(t, TypeDomain, rep.ReportType)
	assert.Equal(t, "2026-01-01", rep.DateRange.FromDate)
	assert.Equal(t, 31, rep.DateRange.DurationDays)

	// Sendgrid only had the zero-delivery row
	assert.Contains(t, rep.ESPData, "Sparkpost")
	assert.Contains(t, rep.ESPData, "Mailgun")
	assert.NotContains(t, rep.ESPData, "Sendgrid")

	sp := rep.ESPData["Sparkpost"]
	require.NotNil(t, sp.USSummary)
	assert.Nil(t, sp.EUSummary)
	require.NotNil(t, sp.CombinedSummary)
	assert.Equal(t, int64(1200), sp.CombinedSummary.TotalSent)
	require.Len(t, sp.Top10Domains, 2)
	assert.Equal(t, "a.com", sp.Top10Domains[0].FromDomain)
	assert.Len(t, sp.AllData, 2)

	require.Len(t, rep.Top10Overall, 2)
	assert.Equal(t, "a.com", rep.Top10Overall[0].FromDomain)
	assert.Equal(t, int64(1500), rep.Top10Overall[0].Sent)
	assert.Equal(t, "Mailgun, Sparkpost", rep.Top10Overall[0].ESP)
	assert.Equal(t, 2, rep.TotalDomains)
}

func TestBuildDomainReportEmpty(t *testing.T) {
	rep := BuildDomainReport(nil, "2026-01-01", "2026-01-08")
	assert.Empty(t, rep.ESPData)
	assert.Empty(t, rep.Top10Overall)
	assert.Zero(t, rep.TotalDomains)
	assert.Equal(t, 7, rep.DateRange.DurationDays)
}

func TestBuildAccountReport(t *testing.T) {
	rows := []MetricRow{
		{FromDomain: "a.com", Account: "Acme", ESP: "Sparkpost", Sent: 1000, Delivered: 950,
			SpamReports: i64ptr(3)},
		{FromDomain: "a2.com", Account: "Acme", ESP: "Mailgun", Sent: 500, Delivered: 480,
			SpamReports: i64ptr(1)},
		{FromDomain: "p.com", Account: "PartnerCo", ESP: "Sparkpost", Sent: 300, Delivered: 290,
			SpamReports: i64ptr(2)},
		{FromDomain: "x.com", Account: UnmappedAccount, ESP: "Sparkpost", Sent: 100, Delivered: 95,
			SpamReports: i64ptr(0)},
	}

	rep := BuildAccountReport(rows, []string{"PartnerCo"}, "2026-01-01", "2026-02-01")

	assert.Equal(t, TypeAccount, rep.ReportType)
	assert.Equal(t, 3, rep.TotalAccounts)
	assert.Equal(t, 1, rep.UnmappedDomains)

	require.Contains(t, rep.ESPData, "Sparkpost")
	sp := rep.ESPData["Sparkpost"].Top10Accounts
	require.Len(t, sp, 3)
	assert.Equal(t, "Acme", sp[0].Account)

	require.Len(t, rep.Top10AccountsOverall, 3)
	assert.Equal(t, "Acme", rep.Top10AccountsOverall[0].Account)
	assert.Equal(t, int64(1500), rep.Top10AccountsOverall[0].Sent)
	// account profile: spam over sent, 2 digits
	assert.Equal(t, 0.27, *rep.Top10AccountsOverall[0].SpamRate)

	require.Len(t, rep.AffiliateAccounts, 1)
	assert.Equal(t, "PartnerCo", rep.AffiliateAccounts[0].Account)
	assert.Equal(t, 1, rep.AffiliateAccounts[0].Rank)
}
