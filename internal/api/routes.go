package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the router for the handler set.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Snapshot-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/deliverability/report", h.GetDeliverabilityReport)
		r.Get("/accounts/{account}/summary", h.GetAccountSummary)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.ListSnapshots)
			r.Get("/stats", h.GetSnapshotStats)
			r.Get("/exists", h.CheckSnapshotExists)
			r.Get("/{id}", h.GetSnapshot)
			r.Delete("/{id}", h.DeleteSnapshot)
		})

		r.Route("/mappings", func(r chi.Router) {
			r.Get("/", h.ListMappings)
			r.Post("/", h.CreateMapping)
			r.Get("/stats", h.GetMappingStats)
			r.Post("/import", h.ImportMappings)
			r.Get("/export", h.ExportMappings)
			r.Post("/bulk-delete", h.BulkDeleteMappings)
			r.Get("/account/{account}", h.GetAccountDomains)
			r.Get("/{id}", h.GetMapping)
			r.Put("/{id}", h.UpdateMapping)
			r.Delete("/{id}", h.DeleteMapping)
		})

		r.Route("/pulsation", func(r chi.Router) {
			r.Post("/collect", h.CollectPulsationDay)
			r.Get("/report", h.GetPulsationReport)
			r.Get("/timeseries", h.GetDomainTimeseries)
			r.Get("/dates", h.GetPulsationDates)
		})

		r.Get("/esp/accounts", h.GetESPAccountInfo)
	})

	return r
}
