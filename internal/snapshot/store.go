package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Meta is a snapshot summary without the payload.
type Meta struct {
	ID            string    `json:"id"`
	ReportType    string    `json:"report_type"`
	FromDate      string    `json:"from_date"`
	ToDate        string    `json:"to_date"`
	DurationDays  int       `json:"duration_days"`
	TotalDomains  int       `json:"total_domains"`
	TotalAccounts int       `json:"total_accounts"`
	Month         int       `json:"month,omitempty"`
	Year          int       `json:"year,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stored is a snapshot with its payload.
type Stored struct {
	Meta
	Report *report.Report `json:"report_data"`
}

// Stats summarizes the snapshot table.
type Stats struct {
	TotalReports   int    `json:"total_reports"`
	DomainReports  int    `json:"domain_reports"`
	AccountReports int    `json:"account_reports"`
	EarliestReport string `json:"earliest_report,omitempty"`
	LatestReport   string `json:"latest_report,omitempty"`
}

// Store is a Postgres-backed snapshot repository.
type Store struct{ db *sql.DB }

// NewStore creates a snapshot store over the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Migrate creates the snapshot table and its lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mbr_reports (
			id TEXT PRIMARY KEY,
			report_type TEXT NOT NULL,
			from_date TEXT NOT NULL,
			to_date TEXT NOT NULL,
			duration_days INTEGER NOT NULL DEFAULT 0,
			total_domains INTEGER NOT NULL DEFAULT 0,
			total_accounts INTEGER NOT NULL DEFAULT 0,
			month INTEGER,
			year INTEGER,
			report_data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mbr_reports_dates
			ON mbr_reports(from_date, to_date, report_type)`,
		`CREATE INDEX IF NOT EXISTS idx_mbr_reports_created_at
			ON mbr_reports(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate mbr_reports: %w", err)
		}
	}
	return nil
}

// Save inserts a new timestamped snapshot and returns its id. Multiple
// snapshots for the same date range are expected; each captures a different
// point in time and none is ever overwritten.
func (s *Store) Save(ctx context.Context, rep *report.Report) (string, error) {
	payload, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	var month, year sql.NullInt64
	if m, y, ok := DetectMonthYear(rep.DateRange.FromDate, rep.DateRange.ToDate, rep.DateRange.DurationDays); ok {
		month = sql.NullInt64{Int64: int64(m), Valid: true}
		year = sql.NullInt64{Int64: int64(y), Valid: true}
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mbr_reports (
			id, report_type, from_date, to_date, duration_days,
			total_domains, total_accounts, month, year, report_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, rep.ReportType, rep.DateRange.FromDate, rep.DateRange.ToDate,
		rep.DateRange.DurationDays, rep.TotalDomains, rep.TotalAccounts,
		month, year, payload)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// FindLatest returns the most recently created snapshot payload for an exact
// (from, to, type) match, or (nil, nil) when no snapshot exists for that
// range. Exact match only; the comparator never wants a fuzzy period.
func (s *Store) FindLatest(ctx context.Context, fromDate, toDate, reportType string) (*report.Report, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT report_data FROM mbr_reports
		WHERE from_date = $1 AND to_date = $2 AND report_type = $3
		ORDER BY created_at DESC LIMIT 1
	`, fromDate, toDate, reportType).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest snapshot: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &rep, nil
}

// Exists returns the newest snapshot metadata for a (from, to, type) tuple,
// or (nil, nil) when none is stored.
func (s *Store) Exists(ctx context.Context, fromDate, toDate, reportType string) (*Meta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, report_type, from_date, to_date, duration_days,
		       total_domains, total_accounts, COALESCE(month, 0), COALESCE(year, 0), created_at
		FROM mbr_reports
		WHERE from_date = $1 AND to_date = $2 AND report_type = $3
		ORDER BY created_at DESC LIMIT 1
	`, fromDate, toDate, reportType)

	meta, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check snapshot exists: %w", err)
	}
	return meta, nil
}

// List returns snapshot summaries newest first, optionally filtered by report
// type. The payload is not loaded.
func (s *Store) List(ctx context.Context, reportType string, limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, report_type, from_date, to_date, duration_days,
		       total_domains, total_accounts, COALESCE(month, 0), COALESCE(year, 0), created_at
		FROM mbr_reports`
	args := []any{}
	if reportType != "" {
		query += ` WHERE report_type = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, reportType, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, *meta)
	}
	return out, rows.Err()
}

// GetByID loads a full snapshot, payload included.
func (s *Store) GetByID(ctx context.Context, id string) (*Stored, error) {
	var (
		st      Stored
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, report_type, from_date, to_date, duration_days,
		       total_domains, total_accounts, COALESCE(month, 0), COALESCE(year, 0),
		       created_at, report_data
		FROM mbr_reports WHERE id = $1
	`, id).Scan(&st.ID, &st.ReportType, &st.FromDate, &st.ToDate, &st.DurationDays,
		&st.TotalDomains, &st.TotalAccounts, &st.Month, &st.Year, &st.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	st.Report = &rep
	return &st, nil
}

// Delete removes a snapshot by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mbr_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats summarizes the stored snapshots.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var (
		st       Stats
		earliest sql.NullString
		latest   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE report_type = 'domain'),
		       COUNT(*) FILTER (WHERE report_type = 'account'),
		       MIN(from_date), MAX(to_date)
		FROM mbr_reports
	`).Scan(&st.TotalReports, &st.DomainReports, &st.AccountReports, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("snapshot stats: %w", err)
	}
	st.EarliestReport = earliest.String
	st.LatestReport = latest.String
	return &st, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanMeta(r rowScanner) (*Meta, error) {
	var m Meta
	err := r.Scan(&m.ID, &m.ReportType, &m.FromDate, &m.ToDate, &m.DurationDays,
		&m.TotalDomains, &m.TotalAccounts, &m.Month, &m.Year, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
