package report

import (
	"sort"
	"strings"
)

// keySep joins group-key values into a map key. Unit separator; never appears
// in domain or account names.
const keySep = "\x1f"

// presence records which optional columns exist anywhere in the input set. A
// column absent from every row stays absent from the output instead of being
// zero-filled.
type presence struct {
	bounces, softBounces, spam, unsub    bool
	userOpens, prefetchOpens, proxyOpens bool
	clicks                               bool
}

func scanPresence(rows []MetricRow) presence {
	var p presence
	for _, r := range rows {
		p.bounces = p.bounces || r.Bounces != nil
		p.softBounces = p.softBounces || r.SoftBounces != nil
		p.spam = p.spam || r.SpamReports != nil
		p.unsub = p.unsub || r.Unsubscribes != nil
		p.userOpens = p.userOpens || r.UniqueUserOpens != nil
		p.prefetchOpens = p.prefetchOpens || r.UniquePrefetchOpens != nil
		p.proxyOpens = p.proxyOpens || r.UniqueProxyOpens != nil
		p.clicks = p.clicks || r.UniqueClicks != nil
	}
	return p
}

// Aggregate groups rows by the requested key columns, sums counts, and
// recomputes every derivable rate over the summed counts. Sent and delivered
// are always summed; optional columns are summed only when present somewhere
// in the input (nil values count as zero within a present column). Output is
// sorted ascending by the group-key tuple so identical input always produces
// identical output. Empty input returns an empty slice.
func Aggregate(rows []MetricRow, groupBy []string, profile RateProfile) []AggregateRow {
	out := make([]AggregateRow, 0, len(rows))
	if len(rows) == 0 {
		return out
	}

	p := scanPresence(rows)
	groups := make(map[string]*AggregateRow)

	for _, r := range rows {
		parts := make([]string, len(groupBy))
		for i, col := range groupBy {
			parts[i] = keyValue(&r, col)
		}
		key := strings.Join(parts, keySep)

		agg, ok := groups[key]
		if !ok {
			agg = &AggregateRow{}
			for _, col := range groupBy {
				setKeyValue(agg, col, keyValue(&r, col))
			}
			groups[key] = agg
		}

		agg.Sent += r.Sent
		agg.Delivered += r.Delivered
		addOptional(&agg.Bounces, r.Bounces, p.bounces)
		addOptional(&agg.SoftBounces, r.SoftBounces, p.softBounces)
		addOptional(&agg.SpamReports, r.SpamReports, p.spam)
		addOptional(&agg.Unsubscribes, r.Unsubscribes, p.unsub)
		addOptional(&agg.UniqueUserOpens, r.UniqueUserOpens, p.userOpens)
		addOptional(&agg.UniquePrefetchOpens, r.UniquePrefetchOpens, p.prefetchOpens)
		addOptional(&agg.UniqueProxyOpens, r.UniqueProxyOpens, p.proxyOpens)
		addOptional(&agg.UniqueClicks, r.UniqueClicks, p.clicks)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		agg := groups[k]
		applyRates(agg, profile)
		out = append(out, *agg)
	}
	return out
}

// addOptional accumulates src into *dst when the column is present in the
// input set, allocating the sum on first use. Nil source values add zero.
func addOptional(dst **int64, src *int64, present bool) {
	if !present {
		return
	}
	if *dst == nil {
		*dst = i64ptr(0)
	}
	if src != nil {
		**dst += *src
	}
}

func keyValue(r *MetricRow, col string) string {
	switch col {
	case KeyAccount:
		return r.Account
	case KeyFromDomain:
		return r.FromDomain
	case KeyESP:
		return r.ESP
	case KeyRegion:
		return r.Region
	default:
		return ""
	}
}

func setKeyValue(agg *AggregateRow, col, val string) {
	switch col {
	case KeyAccount:
		agg.Account = val
	case KeyFromDomain:
		agg.FromDomain = val
	case KeyESP:
		agg.ESP = val
	case KeyRegion:
		agg.Region = val
	}
}
