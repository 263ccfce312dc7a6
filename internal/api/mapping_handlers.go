package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mbr-dashboard/internal/mapping"
	"github.com/ignite/mbr-dashboard/internal/pkg/httputil"
)

// ListMappings returns domain-account mappings with optional search and
// pagination. Query params: search, limit, offset.
func (h *Handlers) ListMappings(w http.ResponseWriter, r *http.Request) {
	f := mapping.ListFilter{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	mappings, total, err := h.mappings.List(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if mappings == nil {
		mappings = []mapping.Mapping{}
	}
	httputil.OK(w, map[string]any{"mappings": mappings, "total": total})
}

// CreateMapping adds one domain-account mapping.
func (h *Handlers) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var m mapping.Mapping
	if !httputil.Decode(w, r, &m) {
		return
	}
	if m.SendingDomain == "" || m.AccountName == "" {
		httputil.BadRequest(w, "sending_domain and account_name are required")
		return
	}

	created, err := h.mappings.Create(r.Context(), &m)
	if errors.Is(err, mapping.ErrDuplicate) {
		httputil.Error(w, http.StatusConflict, "sending domain already mapped")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, created)
}

// GetMapping returns one mapping by id.
func (h *Handlers) GetMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid mapping id")
		return
	}

	m, err := h.mappings.GetByID(r.Context(), id)
	if errors.Is(err, mapping.ErrNotFound) {
		httputil.NotFound(w, "mapping not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, m)
}

// BulkDeleteMappings removes a batch of mappings in one call.
func (h *Handlers) BulkDeleteMappings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if len(body.IDs) == 0 {
		httputil.BadRequest(w, "ids is required")
		return
	}

	deleted, err := h.mappings.BulkDelete(r.Context(), body.IDs)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"deleted_count": deleted})
}

// UpdateMapping modifies an existing mapping.
func (h *Handlers) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid mapping id")
		return
	}

	var m mapping.Mapping
	if !httputil.Decode(w, r, &m) {
		return
	}
	m.ID = id
	if m.SendingDomain == "" || m.AccountName == "" {
		httputil.BadRequest(w, "sending_domain and account_name are required")
		return
	}

	updated, err := h.mappings.Update(r.Context(), &m)
	if errors.Is(err, mapping.ErrNotFound) {
		httputil.NotFound(w, "mapping not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, updated)
}

// DeleteMapping removes a mapping.
func (h *Handlers) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid mapping id")
		return
	}

	err = h.mappings.Delete(r.Context(), id)
	if errors.Is(err, mapping.ErrNotFound) {
		httputil.NotFound(w, "mapping not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetMappingStats summarizes the mapping table.
func (h *Handlers) GetMappingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mappings.GetStats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}

// GetAccountDomains lists the domains mapped to one account.
func (h *Handlers) GetAccountDomains(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	domains, err := h.mappings.DomainsForAccount(r.Context(), account)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if domains == nil {
		domains = []string{}
	}
	httputil.OK(w, map[string]any{"account_name": account, "domains": domains})
}

// ImportMappings bulk-loads mappings from an uploaded CSV body.
func (h *Handlers) ImportMappings(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	imported, skipped, err := h.mappings.ImportCSV(r.Context(), r.Body)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, map[string]any{"imported": imported, "skipped": skipped})
}

// ExportMappings streams every mapping as CSV.
func (h *Handlers) ExportMappings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="domain_mappings.csv"`)
	if _, err := h.mappings.ExportCSV(r.Context(), w); err != nil {
		// Headers are already out; the truncated body is the best signal left.
		return
	}
}
