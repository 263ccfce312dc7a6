package mom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mbr-dashboard/internal/report"
)

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name             string
		from, to         string
		wantFrom, wantTo string
	}{
		{"january", "2026-01-01", "2026-01-31", "2025-12-01", "2025-12-31"},
		{"single day", "2026-03-15", "2026-03-15", "2026-03-14", "2026-03-14"},
		{"one week", "2026-02-08", "2026-02-14", "2026-02-01", "2026-02-07"},
		{"across year boundary", "2026-01-05", "2026-01-11", "2025-12-29", "2026-01-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFrom, gotTo, err := PreviousPeriod(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, gotFrom)
			assert.Equal(t, tt.wantTo, gotTo)
		})
	}
}

func TestPreviousPeriodBadDate(t *testing.T) {
	_, _, err := PreviousPeriod("not-a-date", "2026-01-31")
	assert.Error(t, err)
}

func TestChange(t *testing.T) {
	got := Change(150, 100)
	require.NotNil(t, got)
	assert.Equal(t, 50.0, *got)

	got = Change(75, 100)
	require.NotNil(t, got)
	assert.Equal(t, -25.0, *got)

	got = Change(100, 100)
	require.NotNil(t, got)
	assert.Zero(t, *got)

	// no prior volume means no delta, not infinity
	assert.Nil(t, Change(500, 0))

	got = Change(1, 3)
	require.NotNil(t, got)
	assert.Equal(t, -66.67, *got)
}

type fakeSnapshots struct {
	rep *report.Report
	err error

	gotFrom, gotTo, gotType string
}

func (f *fakeSnapshots) FindLatest(_ context.Context, fromDate, toDate, reportType string) (*report.Report, error) {
	f.gotFrom, f.gotTo, f.gotType = fromDate, toDate, reportType
	return f.rep, f.err
}

func currentDomainReport() *report.Report {
	return &report.Report{
		ReportType: report.TypeDomain,
		DateRange:  report.DateRange{FromDate: "2026-02-01", ToDate: "2026-03-01"},
		ESPData: map[string]*report.ESPData{
			"Sparkpost": {
				CombinedSummary: &report.Summary{TotalSent: 1500},
				AllData: []report.AggregateRow{
					{FromDomain: "a.com", Sent: 1500},
					{FromDomain: "new.com", Sent: 100},
				},
				Top10Domains: []report.AggregateRow{
					{FromDomain: "a.com", Sent: 1500, Rank: 1},
				},
			},
		},
		Top10Overall: []report.AggregateRow{
			{FromDomain: "a.com", Sent: 1500, Rank: 1},
		},
	}
}

func TestApplyDomain(t *testing.T) {
	prev := &report.Report{
		ReportType: report.TypeDomain,
		DateRange:  report.DateRange{FromDate: "2026-01-04", ToDate: "2026-01-31"},
		ESPData: map[string]*report.ESPData{
			"Sparkpost": {
				CombinedSummary: &report.Summary{TotalSent: 1000},
				AllData: []report.AggregateRow{
					{FromDomain: "a.com", Sent: 1000},
				},
			},
		},
	}
	store := &fakeSnapshots{rep: prev}

	rep := currentDomainReport()
	ApplyDomain(context.Background(), rep, store)

	// previous period for 2026-02-01..2026-03-01 (29 days inclusive)
	assert.Equal(t, "2026-01-03", store.gotFrom)
	assert.Equal(t, "2026-01-31", store.gotTo)
	assert.Equal(t, report.TypeDomain, store.gotType)

	sp := rep.ESPData["Sparkpost"]
	require.NotNil(t, sp.CombinedSummary.MoMSendChange)
	assert.Equal(t, 50.0, *sp.CombinedSummary.MoMSendChange)

	require.NotNil(t, sp.AllData[0].MoMSendChangePct)
	assert.Equal(t, 50.0, *sp.AllData[0].MoMSendChangePct)
	// domain absent from the previous snapshot stays nil
	assert.Nil(t, sp.AllData[1].MoMSendChangePct)

	require.NotNil(t, rep.Top10Overall[0].MoMSendChangePct)
	assert.Equal(t, 50.0, *rep.Top10Overall[0].MoMSendChangePct)
}

func TestApplyDomainNoSnapshot(t *testing.T) {
	rep := currentDomainReport()
	ApplyDomain(context.Background(), rep, &fakeSnapshots{rep: nil})

	assert.Nil(t, rep.ESPData["Sparkpost"].CombinedSummary.MoMSendChange)
	assert.Nil(t, rep.Top10Overall[0].MoMSendChangePct)
}

func TestApplyDomainStoreError(t *testing.T) {
	rep := currentDomainReport()
	ApplyDomain(context.Background(), rep, &fakeSnapshots{err: assert.AnError})

	assert.Nil(t, rep.Top10Overall[0].MoMSendChangePct)
}

func TestApplyAccountSumsAcrossESPs(t *testing.T) {
	prev := &report.Report{
		ReportType: report.TypeAccount,
		ESPData: map[string]*report.ESPData{
			"Sparkpost": {Top10Accounts: []report.AggregateRow{{Account: "Acme", Sent: 600}}},
			"Mailgun":   {Top10Accounts: []report.AggregateRow{{Account: "Acme", Sent: 400}}},
		},
		Top10AccountsOverall: []report.AggregateRow{
			{Account: "Acme", Sent: 1000},
			{Account: "OnlyOverall", Sent: 200},
		},
	}
	store := &fakeSnapshots{rep: prev}

	rep := &report.Report{
		ReportType: report.TypeAccount,
		DateRange:  report.DateRange{FromDate: "2026-02-01", ToDate: "2026-03-01"},
		ESPData:    map[string]*report.ESPData{},
		Top10AccountsOverall: []report.AggregateRow{
			{Account: "Acme", Sent: 1500},
			{Account: "OnlyOverall", Sent: 100},
		},
	}
	ApplyAccount(context.Background(), rep, store)

	require.NotNil(t, rep.Top10AccountsOverall[0].MoMSendChangePct)
	assert.Equal(t, 50.0, *rep.Top10AccountsOverall[0].MoMSendChangePct)

	// backfilled from the overall list
	require.NotNil(t, rep.Top10AccountsOverall[1].MoMSendChangePct)
	assert.Equal(t, -50.0, *rep.Top10AccountsOverall[1].MoMSendChangePct)
}
