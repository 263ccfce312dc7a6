// Package api exposes the dashboard's HTTP surface: deliverability reports,
// snapshot history, domain mappings, daily monitoring and ESP account info.
package api

import (
	"regexp"

	"github.com/ignite/mbr-dashboard/internal/config"
	"github.com/ignite/mbr-dashboard/internal/druid"
	"github.com/ignite/mbr-dashboard/internal/espinfo"
	"github.com/ignite/mbr-dashboard/internal/mapping"
	"github.com/ignite/mbr-dashboard/internal/pulsation"
	"github.com/ignite/mbr-dashboard/internal/snapshot"
)

// Handlers bundles the dependencies behind the HTTP endpoints.
type Handlers struct {
	collector *druid.Collector
	mappings  *mapping.Store
	resolver  *mapping.Resolver
	snapshots *snapshot.Store
	daily     *pulsation.Store
	espInfo   *espinfo.Service
	cfg       *config.Config
}

// NewHandlers creates the handler set. espInfo may be nil when no ESP API
// keys are configured.
func NewHandlers(
	collector *druid.Collector,
	mappings *mapping.Store,
	snapshots *snapshot.Store,
	daily *pulsation.Store,
	espInfo *espinfo.Service,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		collector: collector,
		mappings:  mappings,
		resolver:  mapping.NewResolver(mappings),
		snapshots: snapshots,
		daily:     daily,
		espInfo:   espInfo,
		cfg:       cfg,
	}
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validDate(s string) bool { return dateRe.MatchString(s) }
