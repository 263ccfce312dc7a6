package report

import "math"

// Rate computes numerator/denominator as a percentage rounded to the given
// number of digits. A zero, negative, or otherwise unusable denominator yields
// 0.0 — never NaN, never an error. Non-finite division results are coerced to
// 0.0 as a defensive guard; they cannot occur when the denominator guard
// holds, but warehouse data is not trusted to keep invariants.
func Rate(numerator, denominator float64, precision int) float64 {
	if denominator <= 0 {
		return 0.0
	}
	v := numerator / denominator * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return roundTo(v, precision)
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// sanitize coerces any residual NaN/Inf in a computed rate to 0. Applied as a
// final pass over every aggregate row so non-finite values never escape.
func sanitize(v *float64) {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		*v = 0.0
	}
}

// applyRates recomputes every derivable rate on an aggregate row, in
// dependency order: total unique opens first, then the sent/delivered based
// rates, then open rate, click rate, and CTOR (which need the totals).
// A rate whose inputs are absent is left nil.
func applyRates(row *AggregateRow, profile RateProfile) {
	if row.UniqueUserOpens != nil && row.UniquePrefetchOpens != nil && row.UniqueProxyOpens != nil {
		row.TotalUniqueOpens = i64ptr(*row.UniqueUserOpens + *row.UniquePrefetchOpens + *row.UniqueProxyOpens)
	}

	sent := float64(row.Sent)
	delivered := float64(row.Delivered)

	row.DeliveryRate = f64ptr(Rate(delivered, sent, 2))

	// Account rollups keep 2-digit precision and charge spam/unsub against
	// sent; domain detail views use 4 digits against delivered.
	detailPrecision := 4
	spamDenominator := delivered
	if profile == AccountRates {
		detailPrecision = 2
		spamDenominator = sent
	}

	if row.Bounces != nil {
		row.BounceRate = f64ptr(Rate(float64(*row.Bounces), sent, detailPrecision))
	}
	if row.SpamReports != nil {
		row.SpamRate = f64ptr(Rate(float64(*row.SpamReports), spamDenominator, detailPrecision))
	}
	if row.Unsubscribes != nil {
		row.UnsubRate = f64ptr(Rate(float64(*row.Unsubscribes), spamDenominator, detailPrecision))
	}
	if row.TotalUniqueOpens != nil {
		row.OpenRate = f64ptr(Rate(float64(*row.TotalUniqueOpens), delivered, 2))
	}
	if row.UniqueClicks != nil {
		row.ClickRate = f64ptr(Rate(float64(*row.UniqueClicks), delivered, 2))
		if row.TotalUniqueOpens != nil {
			row.CTOR = f64ptr(Rate(float64(*row.UniqueClicks), float64(*row.TotalUniqueOpens), 2))
		}
	}

	for _, v := range []*float64{
		row.DeliveryRate, row.BounceRate, row.SpamRate, row.UnsubRate,
		row.OpenRate, row.ClickRate, row.CTOR,
	} {
		sanitize(v)
	}
}
