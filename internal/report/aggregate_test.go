package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil, []string{KeyFromDomain}, DomainRates)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateSumsAcrossRegions(t *testing.T) {
	rows := []MetricRow{
		{FromDomain: "a.com", ESP: "Sparkpost", Region: "US", Sent: 600, Delivered: 570, Bounces: i64ptr(10)},
		{FromDomain: "a.com", ESP: "Sparkpost", Region: "EU", Sent: 400, Delivered: 380, Bounces: i64ptr(5)},
	}

	got := Aggregate(rows, []string{KeyFromDomain, KeyESP}, DomainRates)
	require.Len(t, got, 1)
	assert.Equal(t, "a.com", got[0].FromDomain)
	assert.Equal(t, int64(1000), got[0].Sent)
	assert.Equal(t, int64(950), got[0].Delivered)
	require.NotNil(t, got[0].Bounces)
	assert.Equal(t, int64(15), *got[0].Bounces)
	require.NotNil(t, got[0].DeliveryRate)
	assert.Equal(t, 95.0, *got[0].DeliveryRate)
}

func TestAggregateAbsentColumnStaysAbsent(t *testing.T) {
	rows := []MetricRow{
		{FromDomain: "a.com", ESP: "Mailgun", Sent: 100, Delivered: 90},
		{FromDomain: "a.com", ESP: "Mailgun", Sent: 50, Delivered: 45},
	}

	got := Aggregate(rows, []string{KeyFromDomain}, DomainRates)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Bounces)
	assert.Nil(t, got[0].BounceRate)
	assert.Nil(t, got[0].SpamRate)
	assert.Nil(t, got[0].TotalUniqueOpens)
	assert.Nil(t, got[0].OpenRate)
}

func TestAggregateNilValueWithinPresentColumn(t *testing.T) {
	rows := []MetricRow{
		{FromDomain: "a.com", ESP: "Mailgun", Sent: 100, Delivered: 90, SpamReports: i64ptr(3)},
		{FromDomain: "a.com", ESP: "Mailgun", Sent: 50, Delivered: 45, SpamReports: nil},
	}

	got := Aggregate(rows, []string{KeyFromDomain}, DomainRates)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].SpamReports)
	assert.Equal(t, int64(3), *got[0].SpamReports)
}

func TestAggregateTotalOpensRequiresAllThreeComponents(t *testing.T) {
	withAll := Aggregate([]MetricRow{{
		FromDomain: "a.com", Sent: 100, Delivered: 90,
		UniqueUserOpens:     i64ptr(10),
		UniquePrefetchOpens: i64ptr(5),
		UniqueProxyOpens:    i64ptr(2),
	}}, []string{KeyFromDomain}, DomainRates)
	require.Len(t, withAll, 1)
	require.NotNil(t, withAll[0].TotalUniqueOpens)
	assert.Equal(t, int64(17), *withAll[0].TotalUniqueOpens)

	missingOne := Aggregate([]MetricRow{{
		FromDomain: "a.com", Sent: 100, Delivered: 90,
		UniqueUserOpens:     i64ptr(10),
		UniquePrefetchOpens: i64ptr(5),
	}}, []string{KeyFromDomain}, DomainRates)
	require.Len(t, missingOne, 1)
	assert.Nil(t, missingOne[0].TotalUniqueOpens)
	assert.Nil(t, missingOne[0].OpenRate)
}

func TestAggregateCanonicalOrder(t *testing.T) {
	rows := []MetricRow{
		{FromDomain: "z.com", ESP: "Sparkpost", Sent: 1, Delivered: 1},
		{FromDomain: "a.com", ESP: "Sparkpost", Sent: 1, Delivered: 1},
		{FromDomain: "m.com", ESP: "Mailgun", Sent: 1, Delivered: 1},
	}

	first := Aggregate(rows, []string{KeyFromDomain, KeyESP}, DomainRates)
	second := Aggregate(rows, []string{KeyFromDomain, KeyESP}, DomainRates)
	assert.Equal(t, first, second)
	assert.Equal(t, "a.com", first[0].FromDomain)
	assert.Equal(t, "m.com", first[1].FromDomain)
	assert.Equal(t, "z.com", first[2].FromDomain)
}

func TestAggregateRateProfiles(t *testing.T) {
	rows := []MetricRow{{
		FromDomain: "a.com", Account: "Acme", Sent: 1000, Delivered: 950,
		SpamReports: i64ptr(3), Unsubscribes: i64ptr(7),
	}}

	domain := Aggregate(rows, []string{KeyFromDomain}, DomainRates)
	require.Len(t, domain, 1)
	// spam over delivered at 4 digits
	assert.Equal(t, 0.3158, *domain[0].SpamRate)
	assert.Equal(t, 0.7368, *domain[0].UnsubRate)

	account := Aggregate(rows, []string{KeyAccount}, AccountRates)
	require.Len(t, account, 1)
	// spam over sent at 2 digits
	assert.Equal(t, 0.3, *account[0].SpamRate)
	assert.Equal(t, 0.7, *account[0].UnsubRate)
}

// Full pipeline over a realistic row set: one domain sending through one ESP
// in two regions, all metric columns populated.
func TestAggregateFullScenario(t *testing.T) {
	rows := []MetricRow{
		{
			FromDomain: "news.example.com", ESP: "Sparkpost", Region: "US",
			Sent: 600, Delivered: 570,
			Bounces: i64ptr(18), SpamReports: i64ptr(2), Unsubscribes: i64ptr(4),
			UniqueUserOpens: i64ptr(50), UniquePrefetchOpens: i64ptr(12),
			UniqueProxyOpens: i64ptr(8), UniqueClicks: i64ptr(20),
		},
		{
			FromDomain: "news.example.com", ESP: "Sparkpost", Region: "EU",
			Sent: 400, Delivered: 380,
			Bounces: i64ptr(12), SpamReports: i64ptr(1), Unsubscribes: i64ptr(2),
			UniqueUserOpens: i64ptr(30), UniquePrefetchOpens: i64ptr(8),
			UniqueProxyOpens: i64ptr(7), UniqueClicks: i64ptr(10),
		},
	}

	got := Aggregate(rows, []string{KeyFromDomain, KeyESP}, DomainRates)
	require.Len(t, got, 1)
	r := got[0]

	assert.Equal(t, int64(1000), r.Sent)
	assert.Equal(t, int64(950), r.Delivered)
	require.NotNil(t, r.TotalUniqueOpens)
	assert.Equal(t, int64(115), *r.TotalUniqueOpens)

	assert.Equal(t, 95.0, *r.DeliveryRate)
	assert.Equal(t, 3.0, *r.BounceRate)
	assert.Equal(t, 12.11, *r.OpenRate)
	assert.Equal(t, 3.16, *r.ClickRate)
	assert.Equal(t, 26.09, *r.CTOR)
}
