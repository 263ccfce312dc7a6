package api

import (
	"net/http"

	"github.com/ignite/mbr-dashboard/internal/pkg/httputil"
)

// GetESPAccountInfo returns the cached ESP directory snapshot. Query param
// refresh=true bypasses the cache.
func (h *Handlers) GetESPAccountInfo(w http.ResponseWriter, r *http.Request) {
	if h.espInfo == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "no ESP API keys configured")
		return
	}

	info, err := h.espInfo.Get(r.Context(), r.URL.Query().Get("refresh") == "true")
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, info)
}
