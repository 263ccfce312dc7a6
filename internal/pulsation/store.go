package pulsation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// Store is the Postgres repository for daily monitoring history.
type Store struct{ db *sql.DB }

// NewStore creates a pulsation store over the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Migrate creates the daily metrics table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			id BIGSERIAL PRIMARY KEY,
			report_date DATE NOT NULL,
			from_domain TEXT NOT NULL,
			region TEXT NOT NULL,
			esp TEXT NOT NULL,
			sent BIGINT NOT NULL DEFAULT 0,
			delivered BIGINT NOT NULL DEFAULT 0,
			bounces BIGINT NOT NULL DEFAULT 0,
			soft_bounces BIGINT NOT NULL DEFAULT 0,
			spam_reports BIGINT NOT NULL DEFAULT 0,
			unsubscribes BIGINT NOT NULL DEFAULT 0,
			delivery_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			bounce_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			spam_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			unsub_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			classification TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (report_date, from_domain, region, esp)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_metrics_date
			ON daily_metrics(report_date)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_metrics_domain
			ON daily_metrics(from_domain, report_date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate daily_metrics: %w", err)
		}
	}
	return nil
}

// SaveDay upserts the scored rows for one report date. Re-running a day
// replaces its rows in place.
func (s *Store) SaveDay(ctx context.Context, rows []DailyRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save day: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_metrics (
			report_date, from_domain, region, esp,
			sent, delivered, bounces, soft_bounces, spam_reports, unsubscribes,
			delivery_rate, bounce_rate, spam_rate, unsub_rate,
			risk_score, classification
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (report_date, from_domain, region, esp) DO UPDATE SET
			sent = EXCLUDED.sent,
			delivered = EXCLUDED.delivered,
			bounces = EXCLUDED.bounces,
			soft_bounces = EXCLUDED.soft_bounces,
			spam_reports = EXCLUDED.spam_reports,
			unsubscribes = EXCLUDED.unsubscribes,
			delivery_rate = EXCLUDED.delivery_rate,
			bounce_rate = EXCLUDED.bounce_rate,
			spam_rate = EXCLUDED.spam_rate,
			unsub_rate = EXCLUDED.unsub_rate,
			risk_score = EXCLUDED.risk_score,
			classification = EXCLUDED.classification
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare save day: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.ReportDate, r.FromDomain, r.Region, r.ESP,
			r.Sent, r.Delivered, r.Bounces, r.SoftBounces, r.SpamReports, r.Unsubscribes,
			r.DeliveryRate, r.BounceRate, r.SpamRate, r.UnsubRate,
			r.RiskScore, r.Classification,
		); err != nil {
			return 0, fmt.Errorf("save daily row %s/%s: %w", r.ReportDate, r.FromDomain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save day: %w", err)
	}
	return len(rows), nil
}

// HasDate reports whether any rows exist for a report date.
func (s *Store) HasDate(ctx context.Context, reportDate string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM daily_metrics WHERE report_date = $1)`,
		reportDate,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check date %s: %w", reportDate, err)
	}
	return exists, nil
}

// AvailableDates returns the distinct report dates on record, newest first.
func (s *Store) AvailableDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT report_date::TEXT FROM daily_metrics
		ORDER BY report_date::TEXT DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("available dates: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RangeRows returns raw counts over an inclusive date range as core metric
// rows, so callers re-aggregate and re-derive rates over the summed counts
// instead of averaging stored daily rates.
func (s *Store) RangeRows(ctx context.Context, fromDate, toDate string) ([]report.MetricRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_domain, region, esp,
			SUM(sent), SUM(delivered), SUM(bounces), SUM(soft_bounces),
			SUM(spam_reports), SUM(unsubscribes)
		FROM daily_metrics
		WHERE report_date >= $1 AND report_date <= $2
		GROUP BY from_domain, region, esp
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("range rows %s..%s: %w", fromDate, toDate, err)
	}
	defer rows.Close()

	var out []report.MetricRow
	for rows.Next() {
		var (
			m                                              report.MetricRow
			bounces, softBounces, spamReports, unsubscribe int64
		)
		if err := rows.Scan(&m.FromDomain, &m.Region, &m.ESP,
			&m.Sent, &m.Delivered, &bounces, &softBounces,
			&spamReports, &unsubscribe); err != nil {
			return nil, fmt.Errorf("scan range row: %w", err)
		}
		m.Bounces = &bounces
		m.SoftBounces = &softBounces
		m.SpamReports = &spamReports
		m.Unsubscribes = &unsubscribe
		out = append(out, m)
	}
	return out, rows.Err()
}

// DomainTimeseries returns the per-day history for one domain over an
// inclusive date range, oldest first. Rows for the same day across regions
// and ESPs are returned individually.
func (s *Store) DomainTimeseries(ctx context.Context, domain, fromDate, toDate string) ([]DailyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_date::TEXT, from_domain, region, esp,
			sent, delivered, bounces, soft_bounces, spam_reports, unsubscribes,
			delivery_rate, bounce_rate, spam_rate, unsub_rate,
			risk_score, classification
		FROM daily_metrics
		WHERE from_domain = $1 AND report_date >= $2 AND report_date <= $3
		ORDER BY report_date, region, esp
	`, strings.ToLower(strings.TrimSpace(domain)), fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("domain timeseries %s: %w", domain, err)
	}
	defer rows.Close()

	var out []DailyRow
	for rows.Next() {
		var d DailyRow
		if err := rows.Scan(&d.ReportDate, &d.FromDomain, &d.Region, &d.ESP,
			&d.Sent, &d.Delivered, &d.Bounces, &d.SoftBounces,
			&d.SpamReports, &d.Unsubscribes,
			&d.DeliveryRate, &d.BounceRate, &d.SpamRate, &d.UnsubRate,
			&d.RiskScore, &d.Classification); err != nil {
			return nil, fmt.Errorf("scan timeseries row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cleanup deletes rows older than the retention window, returning the number
// removed.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM daily_metrics WHERE report_date < NOW() - INTERVAL '%d days'`,
		retentionDays))
	if err != nil {
		return 0, fmt.Errorf("cleanup daily_metrics: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.Info("pruned daily metrics", "rows", n, "retention_days", retentionDays)
	}
	return n, nil
}
