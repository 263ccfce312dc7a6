package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mbr-dashboard/internal/config"
	"github.com/ignite/mbr-dashboard/internal/druid"
	"github.com/ignite/mbr-dashboard/internal/mapping"
	"github.com/ignite/mbr-dashboard/internal/pulsation"
	"github.com/ignite/mbr-dashboard/internal/report"
	"github.com/ignite/mbr-dashboard/internal/snapshot"
)

func newTestRouter(t *testing.T, druidBody string) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	var collector *druid.Collector
	if druidBody != "" {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(druidBody))
		}))
		t.Cleanup(srv.Close)
		collector = druid.NewCollector(druid.NewClient(srv.URL, "US", 5*time.Second))
	} else {
		collector = druid.NewCollector()
	}

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	h := NewHandlers(collector,
		mapping.NewStore(db), snapshot.NewStore(db), pulsation.NewStore(db), nil, cfg)
	return SetupRoutes(h), mock
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDeliverabilityReportValidation(t *testing.T) {
	router, _ := newTestRouter(t, "")

	tests := []struct {
		name   string
		target string
	}{
		{"missing dates", "/api/deliverability/report"},
		{"bad date format", "/api/deliverability/report?from_date=01-01-2026&to_date=2026-02-01"},
		{"inverted range", "/api/deliverability/report?from_date=2026-02-01&to_date=2026-01-01"},
		{"unknown type", "/api/deliverability/report?from_date=2026-01-01&to_date=2026-02-01&type=weekly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDeliverabilityDomainReport(t *testing.T) {
	druidBody := `[{"From_domain":"a.com","ESP":"Sparkpost","Sent":1000,"Delivered":950,
		"Bounces":30,"Spam_report":3,"Unsubscribe":5,
		"Unique_user_open":80,"Unique_pre_fetch_open":20,"Unique_proxy_open":15,
		"unique_click":30,"Unique_soft_bounce":5}]`
	router, mock := newTestRouter(t, druidBody)

	// month-over-month lookup finds no previous snapshot
	mock.ExpectQuery(`SELECT report_data FROM mbr_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"report_data"}))

	rec := doRequest(t, router, http.MethodGet,
		"/api/deliverability/report?from_date=2026-01-01&to_date=2026-02-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, report.TypeDomain, rep.ReportType)
	assert.Equal(t, 31, rep.DateRange.DurationDays)
	require.Contains(t, rep.ESPData, "Sparkpost")
	require.Len(t, rep.Top10Overall, 1)
	assert.Equal(t, "a.com", rep.Top10Overall[0].FromDomain)
	require.NotNil(t, rep.Top10Overall[0].DeliveryRate)
	assert.Equal(t, 95.0, *rep.Top10Overall[0].DeliveryRate)
	assert.Nil(t, rep.Top10Overall[0].MoMSendChangePct)
}

func TestDeliverabilityReportSavesSnapshot(t *testing.T) {
	druidBody := `[{"From_domain":"a.com","ESP":"Sparkpost","Sent":100,"Delivered":95}]`
	router, mock := newTestRouter(t, druidBody)

	mock.ExpectQuery(`SELECT report_data FROM mbr_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"report_data"}))
	mock.ExpectExec(`INSERT INTO mbr_reports`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(t, router, http.MethodGet,
		"/api/deliverability/report?from_date=2026-01-01&to_date=2026-02-01&save=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Snapshot-ID"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSnapshotsEmpty(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT id, report_type`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "report_type", "from_date", "to_date", "duration_days",
			"total_domains", "total_accounts", "month", "year", "created_at",
		}))

	rec := doRequest(t, router, http.MethodGet, "/api/reports/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reports":[]`)
}

func TestGetSnapshotNotFound(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT id, report_type`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(t, router, http.MethodGet, "/api/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMappingValidation(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodPost, "/api/mappings/",
		`{"sending_domain":"","account_name":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMapping(t *testing.T) {
	router, mock := newTestRouter(t, "")

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO domain_account_mapping`).
		WithArgs("a.com", "Acme", "", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	rec := doRequest(t, router, http.MethodPost, "/api/mappings/",
		`{"sending_domain":"a.com","account_name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sending_domain":"a.com"`)
}

func TestAccountSummary(t *testing.T) {
	druidBody := `[{"From_domain":"a.com","ESP":"Sparkpost","Sent":600,"Delivered":570},
		{"From_domain":"b.com","ESP":"Mailgun","Sent":400,"Delivered":300}]`
	router, mock := newTestRouter(t, druidBody)

	mock.ExpectQuery(`SELECT account_name FROM domain_account_mapping`).
		WithArgs("a.com").
		WillReturnRows(sqlmock.NewRows([]string{"account_name"}).AddRow("Acme"))
	mock.ExpectQuery(`SELECT account_name FROM domain_account_mapping`).
		WithArgs("b.com").
		WillReturnRows(sqlmock.NewRows([]string{"account_name"}))

	rec := doRequest(t, router, http.MethodGet,
		"/api/accounts/Acme/summary?from_date=2026-01-01&to_date=2026-02-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"account_name":"Acme"`)
	assert.Contains(t, body, `"total_sent":600`)
	assert.Contains(t, body, `"domains":["a.com"]`)
	assert.NotContains(t, body, "b.com")
}

func TestAccountSummaryNoData(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodGet,
		"/api/accounts/Ghost/summary?from_date=2026-01-01&to_date=2026-02-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckSnapshotExists(t *testing.T) {
	router, mock := newTestRouter(t, "")

	now := time.Now()
	mock.ExpectQuery(`SELECT id, report_type`).
		WithArgs("2026-01-01", "2026-02-01", "domain").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "report_type", "from_date", "to_date", "duration_days",
			"total_domains", "total_accounts", "month", "year", "created_at",
		}).AddRow("id-1", "domain", "2026-01-01", "2026-02-01", 31, 10, 0, 1, 2026, now))

	rec := doRequest(t, router, http.MethodGet,
		"/api/reports/exists?from_date=2026-01-01&to_date=2026-02-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":true`)
	assert.Contains(t, rec.Body.String(), `"id":"id-1"`)
}

func TestCheckSnapshotExistsMissing(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT id, report_type`).
		WithArgs("2026-03-01", "2026-04-01", "account").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(t, router, http.MethodGet,
		"/api/reports/exists?from_date=2026-03-01&to_date=2026-04-01&type=account", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":false`)
}

func TestGetMappingNotFound(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT id, sending_domain`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(t, router, http.MethodGet, "/api/mappings/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkDeleteMappings(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectExec(`DELETE FROM domain_account_mapping WHERE id = ANY`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	rec := doRequest(t, router, http.MethodPost, "/api/mappings/bulk-delete", `{"ids":[1,2]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted_count":2`)
}

func TestBulkDeleteMappingsRequiresIDs(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodPost, "/api/mappings/bulk-delete", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectPulsationDaySkipsExistingDate(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("2026-08-01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := doRequest(t, router, http.MethodPost, "/api/pulsation/collect",
		`{"date":"2026-08-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"skipped"`)
	// no insert happened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectPulsationDayForceBypassesSkip(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO daily_metrics`)
	mock.ExpectCommit()

	rec := doRequest(t, router, http.MethodPost, "/api/pulsation/collect",
		`{"date":"2026-08-01","force":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPulsationReportCarriesRiskModel(t *testing.T) {
	router, mock := newTestRouter(t, "")

	mock.ExpectQuery(`SELECT from_domain, region, esp`).
		WithArgs("2026-08-01", "2026-08-07").
		WillReturnRows(sqlmock.NewRows([]string{
			"from_domain", "region", "esp",
			"sent", "delivered", "bounces", "soft_bounces", "spam_reports", "unsubscribes",
		}).AddRow("risky.com", "US", "Sparkpost",
			int64(1000), int64(600), int64(40), int64(5), int64(3), int64(2)))

	rec := doRequest(t, router, http.MethodGet,
		"/api/pulsation/report?from_date=2026-08-01&to_date=2026-08-07", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"risk_score"`)
	assert.Contains(t, body, `"classification":"Red (High Spam Complaints)"`)
	assert.Contains(t, body, `"classification_counts"`)
	assert.Contains(t, body, `"top20_risk"`)
	assert.Contains(t, body, `"top20_low_delivery"`)
	assert.Contains(t, body, `"all_domains":["risky.com"]`)
}

func TestPulsationReportValidation(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodGet, "/api/pulsation/report?from_date=bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPulsationTimeseriesRequiresDomain(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodGet,
		"/api/pulsation/timeseries?from_date=2026-01-01&to_date=2026-01-31", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestESPAccountInfoUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := doRequest(t, router, http.MethodGet, "/api/esp/accounts", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
