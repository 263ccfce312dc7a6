// Package mom annotates a current report with month-over-month send-volume
// deltas against the most recent snapshot of the previous comparable period.
package mom

import (
	"context"
	"math"
	"time"

	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/report"
)

const dateLayout = "2006-01-02"

// SnapshotSource finds the newest stored report for an exact date range and
// report type. A missing snapshot is (nil, nil), not an error.
type SnapshotSource interface {
	FindLatest(ctx context.Context, fromDate, toDate, reportType string) (*report.Report, error)
}

// PreviousPeriod computes the immediately preceding period of the same
// duration: it ends the day before the current period starts.
func PreviousPeriod(fromDate, toDate string) (string, string, error) {
	from, err := time.Parse(dateLayout, fromDate)
	if err != nil {
		return "", "", err
	}
	to, err := time.Parse(dateLayout, toDate)
	if err != nil {
		return "", "", err
	}

	duration := int(to.Sub(from).Hours()/24) + 1
	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -(duration - 1))

	return prevFrom.Format(dateLayout), prevTo.Format(dateLayout), nil
}

// Change computes the percentage change in send volume, rounded to 2 digits.
// Zero previous volume yields nil: "no prior data" is distinct from "no
// change" and must never come out as infinity.
func Change(currentSent, previousSent int64) *float64 {
	if previousSent == 0 {
		return nil
	}
	pct := float64(currentSent-previousSent) / float64(previousSent) * 100
	pct = math.Round(pct*100) / 100
	return &pct
}

// ApplyDomain annotates a domain report in place: per-ESP regional summaries,
// the full detail rows, per-ESP top-10 lists, and the overall top-10. When no
// previous snapshot exists every delta stays nil.
func ApplyDomain(ctx context.Context, rep *report.Report, store SnapshotSource) {
	prev := fetchPrevious(ctx, rep, store, report.TypeDomain)
	if prev == nil {
		return
	}

	prevSends := domainSendMap(prev)
	logger.Info("previous domain snapshot found",
		"domains", len(prevSends),
		"from", prev.DateRange.FromDate, "to", prev.DateRange.ToDate)

	for esp, data := range rep.ESPData {
		var prevData *report.ESPData
		if prev.ESPData != nil {
			prevData = prev.ESPData[esp]
		}
		annotateSummary(data.USSummary, prevSummary(prevData, regionUS))
		annotateSummary(data.EUSummary, prevSummary(prevData, regionEU))
		annotateSummary(data.CombinedSummary, prevSummary(prevData, regionCombined))
		annotateRows(data.AllData, prevSends, domainKey)
		annotateRows(data.Top10Domains, prevSends, domainKey)
	}
	annotateRows(rep.Top10Overall, prevSends, domainKey)
}

// ApplyAccount annotates an account report in place against the previous
// account-level snapshot.
func ApplyAccount(ctx context.Context, rep *report.Report, store SnapshotSource) {
	prev := fetchPrevious(ctx, rep, store, report.TypeAccount)
	if prev == nil {
		return
	}

	prevSends := accountSendMap(prev)
	logger.Info("previous account snapshot found",
		"accounts", len(prevSends),
		"from", prev.DateRange.FromDate, "to", prev.DateRange.ToDate)

	for _, data := range rep.ESPData {
		annotateRows(data.Top10Accounts, prevSends, accountKey)
	}
	annotateRows(rep.Top10AccountsOverall, prevSends, accountKey)
	annotateRows(rep.AffiliateAccounts, prevSends, accountKey)
}

func fetchPrevious(ctx context.Context, rep *report.Report, store SnapshotSource, reportType string) *report.Report {
	prevFrom, prevTo, err := PreviousPeriod(rep.DateRange.FromDate, rep.DateRange.ToDate)
	if err != nil {
		logger.Warn("cannot compute previous period", "error", err)
		return nil
	}

	prev, err := store.FindLatest(ctx, prevFrom, prevTo, reportType)
	if err != nil {
		logger.Warn("previous snapshot lookup failed", "error", err)
		return nil
	}
	if prev == nil {
		logger.Info("no previous snapshot", "from", prevFrom, "to", prevTo, "type", reportType)
		return nil
	}
	return prev
}

// domainSendMap builds domain -> sent volume from a snapshot's detail rows,
// summing across ESPs when a domain sent through more than one.
func domainSendMap(prev *report.Report) map[string]int64 {
	sends := make(map[string]int64)
	for _, data := range prev.ESPData {
		for _, row := range data.AllData {
			if row.FromDomain != "" {
				sends[row.FromDomain] += row.Sent
			}
		}
	}
	return sends
}

// accountSendMap builds account -> sent volume from a snapshot's per-ESP
// top-account lists, summed across ESPs; the overall list backfills accounts
// missing from every per-ESP list.
func accountSendMap(prev *report.Report) map[string]int64 {
	sends := make(map[string]int64)
	for _, data := range prev.ESPData {
		for _, row := range data.Top10Accounts {
			if row.Account != "" {
				sends[row.Account] += row.Sent
			}
		}
	}
	for _, row := range prev.Top10AccountsOverall {
		if row.Account == "" {
			continue
		}
		if _, ok := sends[row.Account]; !ok {
			sends[row.Account] = row.Sent
		}
	}
	return sends
}

func annotateSummary(current, previous *report.Summary) {
	if current == nil {
		return
	}
	var prevSent int64
	if previous != nil {
		prevSent = previous.TotalSent
	}
	current.MoMSendChange = Change(current.TotalSent, prevSent)
}

func annotateRows(rows []report.AggregateRow, prevSends map[string]int64, key func(*report.AggregateRow) string) {
	for i := range rows {
		rows[i].MoMSendChangePct = Change(rows[i].Sent, prevSends[key(&rows[i])])
	}
}

func domainKey(r *report.AggregateRow) string  { return r.FromDomain }
func accountKey(r *report.AggregateRow) string { return r.Account }

type region int

const (
	regionUS region = iota
	regionEU
	regionCombined
)

func prevSummary(data *report.ESPData, which region) *report.Summary {
	if data == nil {
		return nil
	}
	switch which {
	case regionUS:
		return data.USSummary
	case regionEU:
		return data.EUSummary
	default:
		return data.CombinedSummary
	}
}
