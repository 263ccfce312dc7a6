package report

import (
	"sort"
	"strings"
	"time"
)

// Report types stored and compared by the snapshot machinery.
const (
	TypeDomain  = "domain"
	TypeAccount = "account"
)

// DateRange describes the period a report covers.
type DateRange struct {
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	DurationDays int    `json:"duration_days"`
}

// ESPData is the per-ESP slice of a report.
type ESPData struct {
	USSummary       *Summary       `json:"us_summary,omitempty"`
	EUSummary       *Summary       `json:"eu_summary,omitempty"`
	CombinedSummary *Summary       `json:"combined_summary,omitempty"`
	Top10Domains    []AggregateRow `json:"top10_domains,omitempty"`
	Top10Accounts   []AggregateRow `json:"top10_accounts,omitempty"`
	AllData         []AggregateRow `json:"all_data,omitempty"`
}

// Report is the full payload served to the dashboard and persisted as a
// historical snapshot. Domain reports fill Top10Domains/AllData/Top10Overall;
// account reports fill Top10Accounts/Top10AccountsOverall/AffiliateAccounts.
type Report struct {
	ReportType           string              `json:"report_type"`
	DateRange            DateRange           `json:"date_range"`
	ESPData              map[string]*ESPData `json:"esp_data"`
	Top10Overall         []AggregateRow      `json:"top10_overall,omitempty"`
	Top10AccountsOverall []AggregateRow      `json:"top10_accounts_overall,omitempty"`
	AffiliateAccounts    []AggregateRow      `json:"affiliate_accounts,omitempty"`
	TotalDomains         int                 `json:"total_domains,omitempty"`
	TotalAccounts        int                 `json:"total_accounts,omitempty"`
	UnmappedDomains      int                 `json:"unmapped_domains,omitempty"`
}

func newDateRange(fromDate, toDate string) DateRange {
	dr := DateRange{FromDate: fromDate, ToDate: toDate}
	from, errF := time.Parse("2006-01-02", fromDate)
	to, errT := time.Parse("2006-01-02", toDate)
	if errF == nil && errT == nil {
		dr.DurationDays = int(to.Sub(from).Hours() / 24)
	}
	return dr
}

// BuildDomainReport assembles the domain-level report: per-ESP regional
// summaries, per-ESP top-10 domains, the full per-(domain,region) detail set,
// and the overall top-10 across ESPs. Rows that delivered nothing are dropped
// first, matching the warehouse view the dashboard has always shown.
func BuildDomainReport(rows []MetricRow, fromDate, toDate string) *Report {
	kept := make([]MetricRow, 0, len(rows))
	for _, r := range rows {
		if r.Delivered > 0 {
			kept = append(kept, r)
		}
	}

	rep := &Report{
		ReportType: TypeDomain,
		DateRange:  newDateRange(fromDate, toDate),
		ESPData:    make(map[string]*ESPData),
	}

	for _, esp := range ESPs {
		espRows := filterESP(kept, esp)
		if len(espRows) == 0 {
			continue
		}

		data := &ESPData{
			USSummary:       Summarize(filterRegion(espRows, "US")),
			EUSummary:       Summarize(filterRegion(espRows, "EU")),
			CombinedSummary: Summarize(espRows),
			AllData:         Aggregate(espRows, []string{KeyFromDomain, KeyESP, KeyRegion}, DomainRates),
		}
		byDomain := Aggregate(espRows, []string{KeyFromDomain, KeyESP}, DomainRates)
		data.Top10Domains = TopN(byDomain, SortBySent, 10)

		rep.ESPData[esp] = data
	}

	overall := Aggregate(kept, []string{KeyFromDomain}, DomainRates)
	attachESPList(overall, kept)
	rep.Top10Overall = TopN(overall, SortBySent, 10)
	rep.TotalDomains = len(overall)

	return rep
}

// BuildAccountReport assembles the account-level report from rows that
// already carry the Account column: per-ESP top-10 accounts, overall top-10,
// and the ranked affiliate account set. Account rollups use the account rate
// profile (spam/unsub over sent, 2 digits).
func BuildAccountReport(rows []MetricRow, affiliateAccounts []string, fromDate, toDate string) *Report {
	rep := &Report{
		ReportType: TypeAccount,
		DateRange:  newDateRange(fromDate, toDate),
		ESPData:    make(map[string]*ESPData),
	}

	byAccountESP := Aggregate(rows, []string{KeyAccount, KeyESP}, AccountRates)
	for esp, ranked := range TopNByESP(byAccountESP, SortBySent, 10) {
		rep.ESPData[esp] = &ESPData{Top10Accounts: ranked}
	}

	byAccount := Aggregate(rows, []string{KeyAccount}, AccountRates)
	rep.Top10AccountsOverall = TopN(byAccount, SortBySent, 10)
	rep.TotalAccounts = len(byAccount)

	affiliateRows := FilterAffiliates(rows, affiliateAccounts)
	if len(affiliateRows) > 0 {
		byAffiliate := Aggregate(affiliateRows, []string{KeyAccount}, AccountRates)
		// Ranked but never truncated: the affiliate view lists every account.
		rep.AffiliateAccounts = TopN(byAffiliate, SortBySent, -1)
	}

	for _, r := range rows {
		if r.Account == UnmappedAccount {
			rep.UnmappedDomains++
		}
	}

	return rep
}

func filterESP(rows []MetricRow, esp string) []MetricRow {
	var out []MetricRow
	for _, r := range rows {
		if r.ESP == esp {
			out = append(out, r)
		}
	}
	return out
}

func filterRegion(rows []MetricRow, region string) []MetricRow {
	var out []MetricRow
	for _, r := range rows {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}

// attachESPList annotates domain-keyed aggregates with the sorted,
// comma-joined list of ESPs the domain sent through.
func attachESPList(aggregates []AggregateRow, rows []MetricRow) {
	espsByDomain := make(map[string]map[string]struct{})
	for _, r := range rows {
		if espsByDomain[r.FromDomain] == nil {
			espsByDomain[r.FromDomain] = make(map[string]struct{})
		}
		espsByDomain[r.FromDomain][r.ESP] = struct{}{}
	}

	for i := range aggregates {
		set := espsByDomain[aggregates[i].FromDomain]
		names := make([]string, 0, len(set))
		for esp := range set {
			names = append(names, esp)
		}
		sort.Strings(names)
		aggregates[i].ESP = strings.Join(names, ", ")
	}
}
