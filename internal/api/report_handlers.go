package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mbr-dashboard/internal/mom"
	"github.com/ignite/mbr-dashboard/internal/pkg/httputil"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// GetDeliverabilityReport builds a deliverability report straight from the
// warehouse. Query params: from_date and to_date (YYYY-MM-DD, to exclusive),
// type (domain|account, default domain), save (persist a snapshot).
func (h *Handlers) GetDeliverabilityReport(w http.ResponseWriter, r *http.Request) {
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")
	if !validDate(fromDate) || !validDate(toDate) {
		httputil.BadRequest(w, "from_date and to_date are required as YYYY-MM-DD")
		return
	}
	if toDate <= fromDate {
		httputil.BadRequest(w, "to_date must be after from_date")
		return
	}

	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = report.TypeDomain
	}
	if reportType != report.TypeDomain && reportType != report.TypeAccount {
		httputil.BadRequest(w, "type must be domain or account")
		return
	}

	ctx := r.Context()
	rows := h.collector.FetchDeliverability(ctx,
		fromDate+" 00:00:00", toDate+" 00:00:00")
	logger.Info("deliverability rows fetched",
		"rows", len(rows), "from", fromDate, "to", toDate, "type", reportType)

	var rep *report.Report
	switch reportType {
	case report.TypeAccount:
		rows = report.AddAccountColumn(ctx, rows, h.resolver)
		affiliates, err := h.mappings.AffiliateAccounts(ctx)
		if err != nil {
			logger.Warn("affiliate account lookup failed", "error", err)
		}
		rep = report.BuildAccountReport(rows, affiliates, fromDate, toDate)
		mom.ApplyAccount(ctx, rep, h.snapshots)
	default:
		rep = report.BuildDomainReport(rows, fromDate, toDate)
		mom.ApplyDomain(ctx, rep, h.snapshots)
	}

	if r.URL.Query().Get("save") == "true" {
		id, err := h.snapshots.Save(ctx, rep)
		if err != nil {
			logger.Error("snapshot save failed", "error", err)
		} else {
			w.Header().Set("X-Snapshot-ID", id)
		}
	}

	httputil.OK(w, rep)
}

// GetAccountSummary is the drilldown for one account: a rollup over its
// domains for the range, a per-ESP breakdown, and the domains that produced
// traffic. Query params: from_date and to_date (YYYY-MM-DD, to exclusive).
func (h *Handlers) GetAccountSummary(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")
	if !validDate(fromDate) || !validDate(toDate) {
		httputil.BadRequest(w, "from_date and to_date are required as YYYY-MM-DD")
		return
	}
	if toDate <= fromDate {
		httputil.BadRequest(w, "to_date must be after from_date")
		return
	}

	ctx := r.Context()
	rows := h.collector.FetchDeliverability(ctx,
		fromDate+" 00:00:00", toDate+" 00:00:00")
	rows = report.AddAccountColumn(ctx, rows, h.resolver)

	var matched []report.MetricRow
	domainSet := map[string]struct{}{}
	for _, row := range rows {
		if row.Account != account {
			continue
		}
		matched = append(matched, row)
		domainSet[row.FromDomain] = struct{}{}
	}
	if len(matched) == 0 {
		httputil.NotFound(w, "no data for account "+account)
		return
	}

	domains := make([]string, 0, len(domainSet))
	for d := range domainSet {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	httputil.OK(w, map[string]any{
		"account_name":  account,
		"from_date":     fromDate,
		"to_date":       toDate,
		"summary":       report.Summarize(matched),
		"by_esp":        report.Aggregate(matched, []string{report.KeyESP}, report.AccountRates),
		"domains":       domains,
		"total_domains": len(domains),
	})
}
