package druid

import "github.com/ignite/mbr-dashboard/internal/report"

// sqlRow mirrors the column aliases of the warehouse queries. Counts come
// back as JSON numbers or null; null means the column was not produced for
// that group and stays nil all the way into the aggregation core.
type sqlRow struct {
	FromDomain string `json:"From_domain"`
	ESP        string `json:"ESP"`

	Sent      *int64 `json:"Sent"`
	Delivered *int64 `json:"Delivered"`

	UniqueUserOpen     *int64 `json:"Unique_user_open"`
	UniquePrefetchOpen *int64 `json:"Unique_pre_fetch_open"`
	UniqueProxyOpen    *int64 `json:"Unique_proxy_open"`
	UniqueClick        *int64 `json:"unique_click"`
	Bounces            *int64 `json:"Bounces"`
	UniqueSoftBounce   *int64 `json:"Unique_soft_bounce"`
	SoftBounceCount    *int64 `json:"Soft_bounce_count"`
	SpamReport         *int64 `json:"Spam_report"`
	Unsubscribe        *int64 `json:"Unsubscribe"`
}

// toMetricRow converts a warehouse row into a core metric row for the given
// region. Sent and Delivered are mandatory downstream, so nulls collapse to
// zero there; everything else keeps its optionality.
func (r sqlRow) toMetricRow(region string) report.MetricRow {
	row := report.MetricRow{
		FromDomain:          r.FromDomain,
		ESP:                 r.ESP,
		Region:              region,
		Bounces:             r.Bounces,
		SpamReports:         r.SpamReport,
		Unsubscribes:        r.Unsubscribe,
		UniqueUserOpens:     r.UniqueUserOpen,
		UniquePrefetchOpens: r.UniquePrefetchOpen,
		UniqueProxyOpens:    r.UniqueProxyOpen,
		UniqueClicks:        r.UniqueClick,
	}
	if r.Sent != nil {
		row.Sent = *r.Sent
	}
	if r.Delivered != nil {
		row.Delivered = *r.Delivered
	}
	switch {
	case r.UniqueSoftBounce != nil:
		row.SoftBounces = r.UniqueSoftBounce
	case r.SoftBounceCount != nil:
		row.SoftBounces = r.SoftBounceCount
	}
	return row
}
