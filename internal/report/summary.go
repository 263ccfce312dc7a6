package report

import "github.com/ignite/mbr-dashboard/internal/health"

// Summary is the rollup for a region, a combined ESP set, or any other row
// subset. Unlike AggregateRow it always carries the full column set: the
// deliverability warehouse query produces every count, and summaries are only
// built from its output.
type Summary struct {
	TotalSent                int64 `json:"total_sent"`
	TotalDelivered           int64 `json:"total_delivered"`
	TotalBounces             int64 `json:"total_bounces"`
	TotalSoftBounces         int64 `json:"total_soft_bounces"`
	TotalSpamReports         int64 `json:"total_spam_reports"`
	TotalUnsubscribes        int64 `json:"total_unsubscribes"`
	TotalUniqueUserOpens     int64 `json:"total_unique_user_opens"`
	TotalUniquePrefetchOpens int64 `json:"total_unique_prefetch_opens"`
	TotalUniqueProxyOpens    int64 `json:"total_unique_proxy_opens"`
	TotalUniqueOpens         int64 `json:"total_unique_opens"`
	TotalUniqueClicks        int64 `json:"total_unique_clicks"`

	DeliveryRate float64 `json:"delivery_rate"`
	BounceRate   float64 `json:"bounce_rate"`
	SpamRate     float64 `json:"spam_rate"`
	UnsubRate    float64 `json:"unsub_rate"`
	OpenRate     float64 `json:"open_rate"`
	ClickRate    float64 `json:"click_rate"`
	CTOR         float64 `json:"ctor"`

	DomainCount int `json:"domain_count"`

	HealthScore     int              `json:"health_score"`
	HealthRating    health.Rating    `json:"health_rating"`
	HealthBreakdown health.Breakdown `json:"health_score_breakdown"`

	MoMSendChange *float64 `json:"mom_send_change"`
}

// Summarize rolls a row subset up into a single Summary with rates recomputed
// over the totals and the health score attached. Returns nil for an empty
// subset; callers serialize that as an absent summary, not a zero one.
func Summarize(rows []MetricRow) *Summary {
	if len(rows) == 0 {
		return nil
	}

	s := &Summary{DomainCount: len(rows)}
	for _, r := range rows {
		s.TotalSent += r.Sent
		s.TotalDelivered += r.Delivered
		s.TotalBounces += optValue(r.Bounces)
		s.TotalSoftBounces += optValue(r.SoftBounces)
		s.TotalSpamReports += optValue(r.SpamReports)
		s.TotalUnsubscribes += optValue(r.Unsubscribes)
		s.TotalUniqueUserOpens += optValue(r.UniqueUserOpens)
		s.TotalUniquePrefetchOpens += optValue(r.UniquePrefetchOpens)
		s.TotalUniqueProxyOpens += optValue(r.UniqueProxyOpens)
		s.TotalUniqueClicks += optValue(r.UniqueClicks)
	}
	s.TotalUniqueOpens = s.TotalUniqueUserOpens + s.TotalUniquePrefetchOpens + s.TotalUniqueProxyOpens

	sent := float64(s.TotalSent)
	delivered := float64(s.TotalDelivered)
	s.DeliveryRate = Rate(delivered, sent, 2)
	s.BounceRate = Rate(float64(s.TotalBounces), sent, 4)
	s.SpamRate = Rate(float64(s.TotalSpamReports), delivered, 4)
	s.UnsubRate = Rate(float64(s.TotalUnsubscribes), delivered, 4)
	s.OpenRate = Rate(float64(s.TotalUniqueOpens), delivered, 2)
	s.ClickRate = Rate(float64(s.TotalUniqueClicks), delivered, 2)
	s.CTOR = Rate(float64(s.TotalUniqueClicks), float64(s.TotalUniqueOpens), 2)

	b := health.Score(&health.Rates{
		DeliveryRate: s.DeliveryRate,
		BounceRate:   s.BounceRate,
		OpenRate:     s.OpenRate,
		UnsubRate:    s.UnsubRate,
		SpamRate:     s.SpamRate,
	})
	s.HealthScore = b.TotalScore
	s.HealthRating = b.Rating
	s.HealthBreakdown = b

	return s
}

func optValue(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
