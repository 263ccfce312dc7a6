package report

import (
	"context"
	"strings"
)

// AccountResolver maps a sending domain to a business account. A miss is
// signaled by ok=false, never an error: the core degrades unmapped domains to
// the Unmapped sentinel.
type AccountResolver interface {
	AccountForDomain(ctx context.Context, domain string) (string, bool)
}

// AddAccountColumn fills the Account field on every row via the resolver.
// Lookups are case-insensitive; unmapped domains all land in the shared
// Unmapped bucket and aggregate there like a real account.
func AddAccountColumn(ctx context.Context, rows []MetricRow, resolver AccountResolver) []MetricRow {
	out := make([]MetricRow, len(rows))
	for i, r := range rows {
		account, ok := resolver.AccountForDomain(ctx, strings.ToLower(r.FromDomain))
		if !ok || account == "" {
			account = UnmappedAccount
		}
		r.Account = account
		out[i] = r
	}
	return out
}

// FilterAffiliates restricts rows to those whose resolved account is in the
// affiliate set. Rows must already carry the Account column.
func FilterAffiliates(rows []MetricRow, affiliateAccounts []string) []MetricRow {
	if len(affiliateAccounts) == 0 {
		return nil
	}
	affiliates := make(map[string]struct{}, len(affiliateAccounts))
	for _, a := range affiliateAccounts {
		affiliates[a] = struct{}{}
	}

	var out []MetricRow
	for _, r := range rows {
		if _, ok := affiliates[r.Account]; ok {
			out = append(out, r)
		}
	}
	return out
}
