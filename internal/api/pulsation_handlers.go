package api

import (
	"net/http"
	"time"

	"github.com/ignite/mbr-dashboard/internal/pkg/httputil"
	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/pulsation"
)

// CollectPulsationDay fetches, scores and stores daily metrics for one
// report date (default: yesterday). A date that already has rows is skipped
// unless force is set; a forced re-run replaces the day's rows.
func (h *Handlers) CollectPulsationDay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date  string `json:"date"`
		Force bool   `json:"force"`
	}
	if r.ContentLength > 0 && !httputil.Decode(w, r, &body) {
		return
	}
	if body.Date == "" {
		body.Date = pulsation.DateString(time.Now().UTC().AddDate(0, 0, -1))
	}
	if !validDate(body.Date) {
		httputil.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	day, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		httputil.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	next := pulsation.DateString(day.AddDate(0, 0, 1))

	ctx := r.Context()
	if !body.Force {
		exists, err := h.daily.HasDate(ctx, body.Date)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if exists {
			httputil.OK(w, map[string]any{
				"status":  "skipped",
				"date":    body.Date,
				"message": "data for " + body.Date + " already collected",
			})
			return
		}
	}

	rows := h.collector.FetchPulsation(ctx, body.Date+" 00:00:00", next+" 00:00:00")
	scored := pulsation.Process(rows, body.Date)

	saved, err := h.daily.SaveDay(ctx, scored)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	if h.cfg != nil {
		if _, err := h.daily.Cleanup(ctx, h.cfg.Pulsation.RetentionDays); err != nil {
			logger.Warn("daily metrics cleanup failed", "error", err)
		}
	}

	httputil.OK(w, map[string]any{"status": "success", "date": body.Date, "rows": saved})
}

type pulsationReportResponse struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Count    int    `json:"count"`
	*pulsation.RangeReport
}

// GetPulsationReport re-aggregates the stored daily history over an inclusive
// date range, so multi-day rates and risk scores derive from summed counts
// rather than averaged dailies. The response carries every scored domain plus
// the worst-offender lists and the classification spread.
func (h *Handlers) GetPulsationReport(w http.ResponseWriter, r *http.Request) {
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")
	if !validDate(fromDate) || !validDate(toDate) {
		httputil.BadRequest(w, "from_date and to_date are required as YYYY-MM-DD")
		return
	}

	rows, err := h.daily.RangeRows(r.Context(), fromDate, toDate)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	view := pulsation.BuildRangeReport(rows)
	httputil.OK(w, pulsationReportResponse{
		FromDate:    fromDate,
		ToDate:      toDate,
		Count:       len(view.Domains),
		RangeReport: view,
	})
}

// GetDomainTimeseries returns the per-day history for one domain.
func (h *Handlers) GetDomainTimeseries(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")
	if domain == "" {
		httputil.BadRequest(w, "domain is required")
		return
	}
	if !validDate(fromDate) || !validDate(toDate) {
		httputil.BadRequest(w, "from_date and to_date are required as YYYY-MM-DD")
		return
	}

	points, err := h.daily.DomainTimeseries(r.Context(), domain, fromDate, toDate)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if points == nil {
		points = []pulsation.DailyRow{}
	}
	httputil.OK(w, map[string]any{"domain": domain, "points": points})
}

// GetPulsationDates lists the report dates with stored daily metrics.
func (h *Handlers) GetPulsationDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.daily.AvailableDates(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	httputil.OK(w, map[string]any{"dates": dates})
}
