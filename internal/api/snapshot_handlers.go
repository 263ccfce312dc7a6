package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mbr-dashboard/internal/pkg/httputil"
	"github.com/ignite/mbr-dashboard/internal/report"
	"github.com/ignite/mbr-dashboard/internal/snapshot"
)

// ListSnapshots returns stored report summaries, newest first. Query params:
// type (domain|account) and limit.
func (h *Handlers) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("type")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	metas, err := h.snapshots.List(r.Context(), reportType, limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if metas == nil {
		metas = []snapshot.Meta{}
	}
	httputil.OK(w, map[string]any{"reports": metas, "count": len(metas)})
}

// CheckSnapshotExists reports whether a snapshot is already stored for an
// exact date range and type, with its metadata when present. The dashboard
// asks before re-saving a period that already has a capture.
func (h *Handlers) CheckSnapshotExists(w http.ResponseWriter, r *http.Request) {
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")
	if !validDate(fromDate) || !validDate(toDate) {
		httputil.BadRequest(w, "from_date and to_date are required as YYYY-MM-DD")
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

	meta, err := h.snapshots.Exists(r.Context(), fromDate, toDate, reportType)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"exists": meta != nil, "report": meta})
}

// GetSnapshot returns one stored report with its full payload.
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stored, err := h.snapshots.GetByID(r.Context(), id)
	if errors.Is(err, snapshot.ErrNotFound) {
		httputil.NotFound(w, "snapshot not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stored)
}

// DeleteSnapshot removes a stored report.
func (h *Handlers) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.snapshots.Delete(r.Context(), id)
	if errors.Is(err, snapshot.ErrNotFound) {
		httputil.NotFound(w, "snapshot not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetSnapshotStats summarizes the snapshot table.
func (h *Handlers) GetSnapshotStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.snapshots.GetStats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}
