package pulsation

import (
	"sort"

	"github.com/ignite/mbr-dashboard/internal/health"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// ScoredRow is one re-aggregated domain with the risk model applied over the
// summed counts.
type ScoredRow struct {
	report.AggregateRow
	RiskScore      float64 `json:"risk_score"`
	Classification string  `json:"classification"`
}

// RangeReport is the monitoring view over a date range: every active domain
// scored and ranked by volume, the worst offenders per dimension, and the
// classification spread.
type RangeReport struct {
	Domains              []ScoredRow    `json:"domains"`
	Top20LowDelivery     []ScoredRow    `json:"top20_low_delivery"`
	Top20Spam            []ScoredRow    `json:"top20_spam"`
	Top20Bounce          []ScoredRow    `json:"top20_bounce"`
	Top20Risk            []ScoredRow    `json:"top20_risk"`
	ClassificationCounts map[string]int `json:"classification_counts"`
	AllDomains           []string       `json:"all_domains"`
}

const topListSize = 20

// BuildRangeReport re-aggregates raw rows by domain, re-derives rates and the
// risk model over the summed counts, and assembles the ranked views. Domains
// with zero sends appear in AllDomains but are excluded from scoring.
func BuildRangeReport(rows []report.MetricRow) *RangeReport {
	agg := report.Aggregate(rows, []string{report.KeyFromDomain}, report.DomainRates)

	rep := &RangeReport{
		Domains:              []ScoredRow{},
		ClassificationCounts: map[string]int{},
		AllDomains:           make([]string, 0, len(agg)),
	}

	var active []report.AggregateRow
	for _, a := range agg {
		rep.AllDomains = append(rep.AllDomains, a.FromDomain)
		if a.Sent > 0 {
			active = append(active, a)
		}
	}

	for _, a := range report.TopN(active, report.SortBySent, -1) {
		delivery := optRate(a.DeliveryRate)
		spam := optRate(a.SpamRate)
		s := ScoredRow{
			AggregateRow:   a,
			RiskScore:      health.RiskScore(delivery, spam, optRate(a.BounceRate)),
			Classification: string(health.Classify(delivery, spam)),
		}
		rep.ClassificationCounts[s.Classification]++
		rep.Domains = append(rep.Domains, s)
	}

	rep.Top20LowDelivery = topBy(rep.Domains, func(a, b *ScoredRow) bool {
		return optRate(a.DeliveryRate) < optRate(b.DeliveryRate)
	})
	rep.Top20Spam = topBy(rep.Domains, func(a, b *ScoredRow) bool {
		return optRate(a.SpamRate) > optRate(b.SpamRate)
	})
	rep.Top20Bounce = topBy(rep.Domains, func(a, b *ScoredRow) bool {
		return optRate(a.BounceRate) > optRate(b.BounceRate)
	})
	rep.Top20Risk = topBy(rep.Domains, func(a, b *ScoredRow) bool {
		return a.RiskScore > b.RiskScore
	})
	return rep
}

// topBy returns the first topListSize rows under the given order. Stable, so
// ties keep their incoming volume rank.
func topBy(rows []ScoredRow, less func(a, b *ScoredRow) bool) []ScoredRow {
	out := make([]ScoredRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	if len(out) > topListSize {
		out = out[:topListSize]
	}
	return out
}

func optRate(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
