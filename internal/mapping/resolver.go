package mapping

import (
	"context"
	"errors"

	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
)

// Resolver adapts the store to the aggregation core's resolver contract: a
// miss or a store failure both come back as ok=false, so the core can fall
// through to the Unmapped bucket instead of failing a report over one domain.
type Resolver struct{ store *Store }

// NewResolver wraps a store in the core-facing resolver.
func NewResolver(store *Store) *Resolver { return &Resolver{store: store} }

// AccountForDomain implements report.AccountResolver.
func (r *Resolver) AccountForDomain(ctx context.Context, domain string) (string, bool) {
	account, err := r.store.Lookup(ctx, domain)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("mapping lookup failed", "domain", domain, "error", err)
		}
		return "", false
	}
	return account, true
}
