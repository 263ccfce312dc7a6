// Package report is the metric aggregation core: it turns raw per-domain
// warehouse rows into grouped, rate-annotated report structures. Everything in
// here is a pure transformation; data-shape problems degrade to zero/nil
// values and never surface as errors.
package report

// ESPs is the set of sending platforms covered by MBR reporting.
var ESPs = []string{"Sparkpost", "Sendgrid", "Mailgun"}

// Regions covered by the Druid brokers.
var Regions = []string{"US", "EU"}

// UnmappedAccount is the sentinel group key for domains with no account
// mapping. It aggregates like any other account.
const UnmappedAccount = "Unmapped"

// MetricRow is one raw warehouse row for a (domain, ESP, region) tuple.
// Sent and Delivered are always present; every other count is optional and
// nil when the source query did not produce the column. Optional columns are
// never zero-filled: a nil count means the corresponding rates are omitted
// downstream, not synthesized.
type MetricRow struct {
	FromDomain string `json:"from_domain"`
	Account    string `json:"account,omitempty"`
	ESP        string `json:"esp"`
	Region     string `json:"region,omitempty"`

	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`

	Bounces             *int64 `json:"bounces,omitempty"`
	SoftBounces         *int64 `json:"soft_bounces,omitempty"`
	SpamReports         *int64 `json:"spam_reports,omitempty"`
	Unsubscribes        *int64 `json:"unsubscribes,omitempty"`
	UniqueUserOpens     *int64 `json:"unique_user_opens,omitempty"`
	UniquePrefetchOpens *int64 `json:"unique_prefetch_opens,omitempty"`
	UniqueProxyOpens    *int64 `json:"unique_proxy_opens,omitempty"`
	UniqueClicks        *int64 `json:"unique_clicks,omitempty"`
}

// AggregateRow is the result of grouping MetricRows by a key tuple and
// recomputing rates over the summed counts. Rate pointers are nil only when
// the inputs they need were absent from every source row; a present rate is
// always finite.
type AggregateRow struct {
	Account    string `json:"account,omitempty"`
	FromDomain string `json:"from_domain,omitempty"`
	ESP        string `json:"esp,omitempty"`
	Region     string `json:"region,omitempty"`

	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`

	Bounces             *int64 `json:"bounces,omitempty"`
	SoftBounces         *int64 `json:"soft_bounces,omitempty"`
	SpamReports         *int64 `json:"spam_reports,omitempty"`
	Unsubscribes        *int64 `json:"unsubscribes,omitempty"`
	UniqueUserOpens     *int64 `json:"unique_user_opens,omitempty"`
	UniquePrefetchOpens *int64 `json:"unique_prefetch_opens,omitempty"`
	UniqueProxyOpens    *int64 `json:"unique_proxy_opens,omitempty"`
	UniqueClicks        *int64 `json:"unique_clicks,omitempty"`
	TotalUniqueOpens    *int64 `json:"total_unique_opens,omitempty"`

	DeliveryRate *float64 `json:"delivery_rate,omitempty"`
	BounceRate   *float64 `json:"bounce_rate,omitempty"`
	SpamRate     *float64 `json:"spam_rate,omitempty"`
	UnsubRate    *float64 `json:"unsub_rate,omitempty"`
	OpenRate     *float64 `json:"open_rate,omitempty"`
	ClickRate    *float64 `json:"click_rate,omitempty"`
	CTOR         *float64 `json:"ctor,omitempty"`

	Rank             int      `json:"rank,omitempty"`
	MoMSendChangePct *float64 `json:"mom_send_change_pct"`
}

// Group key column names accepted by Aggregate.
const (
	KeyAccount    = "account"
	KeyFromDomain = "from_domain"
	KeyESP        = "esp"
	KeyRegion     = "region"
)

// RateProfile selects the denominator and precision conventions for spam,
// unsubscribe and bounce rates. Domain-level detail views report spam/unsub
// over delivered at 4 digits; account-level rollups report them over sent at
// 2 digits. Delivery/open/click/CTOR are identical in both profiles.
type RateProfile int

const (
	DomainRates RateProfile = iota
	AccountRates
)

func i64ptr(v int64) *int64     { p := v; return &p }
func f64ptr(v float64) *float64 { p := v; return &p }
