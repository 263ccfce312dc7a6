package report

import "sort"

// Sortable volume columns for Top-N selection.
const (
	SortBySent      = "sent"
	SortByDelivered = "delivered"
)

func sortValue(r *AggregateRow, col string) int64 {
	switch col {
	case SortByDelivered:
		return r.Delivered
	default:
		return r.Sent
	}
}

// TopN returns the n highest-volume rows sorted descending by the given
// column, with Rank assigned 1..len. Ties keep their incoming order (stable
// sort), which is deterministic because Aggregate output is canonically
// sorted. The input slice is not modified.
func TopN(rows []AggregateRow, sortBy string, n int) []AggregateRow {
	ranked := make([]AggregateRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return sortValue(&ranked[i], sortBy) > sortValue(&ranked[j], sortBy)
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// TopNByESP produces one ranked list per ESP present in the rows. The overall
// list (ignoring the ESP dimension) is built separately by re-aggregating
// without the ESP key and calling TopN.
func TopNByESP(rows []AggregateRow, sortBy string, n int) map[string][]AggregateRow {
	byESP := make(map[string][]AggregateRow)
	for _, r := range rows {
		byESP[r.ESP] = append(byESP[r.ESP], r)
	}

	out := make(map[string][]AggregateRow, len(byESP))
	for esp, group := range byESP {
		out[esp] = TopN(group, sortBy, n)
	}
	return out
}
