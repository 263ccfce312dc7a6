// Package mapping manages sending-domain to business-account mappings in
// Postgres and exposes the account resolver the aggregation core consults.
package mapping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Sentinel errors for mapping CRUD.
var (
	ErrNotFound  = errors.New("mapping not found")
	ErrDuplicate = errors.New("sending domain already mapped")
)

// Mapping is one domain-to-account row.
type Mapping struct {
	ID            int64     `json:"id"`
	SendingDomain string    `json:"sending_domain"`
	AccountName   string    `json:"account_name"`
	Notes         string    `json:"notes,omitempty"`
	IsAffiliate   bool      `json:"is_affiliate"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListFilter narrows and pages List results.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Statistics summarizes the mapping table.
type Statistics struct {
	TotalMappings int            `json:"total_mappings"`
	TotalAccounts int            `json:"total_accounts"`
	TopAccounts   []AccountCount `json:"top_accounts"`
}

// AccountCount pairs an account with its mapped-domain count.
type AccountCount struct {
	AccountName string `json:"account_name"`
	DomainCount int    `json:"domain_count"`
}

// Store is a Postgres-backed mapping repository.
type Store struct{ db *sql.DB }

// NewStore creates a mapping store over the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Migrate creates the mapping table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS domain_account_mapping (
			id BIGSERIAL PRIMARY KEY,
			sending_domain TEXT UNIQUE NOT NULL,
			account_name TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			is_affiliate BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mapping_sending_domain
			ON domain_account_mapping(sending_domain)`,
		`CREATE INDEX IF NOT EXISTS idx_mapping_account_name
			ON domain_account_mapping(account_name)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate domain_account_mapping: %w", err)
		}
	}
	return nil
}

// Lookup returns the account name mapped to a domain. The lookup is
// case-insensitive; the domain is lowercased before matching.
func (s *Store) Lookup(ctx context.Context, domain string) (string, error) {
	var account string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_name FROM domain_account_mapping WHERE sending_domain = $1`,
		strings.ToLower(strings.TrimSpace(domain)),
	).Scan(&account)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup domain %s: %w", domain, err)
	}
	return account, nil
}

// AffiliateAccounts returns the distinct account names flagged as affiliates.
func (s *Store) AffiliateAccounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT account_name FROM domain_account_mapping
		WHERE is_affiliate = TRUE ORDER BY account_name
	`)
	if err != nil {
		return nil, fmt.Errorf("affiliate accounts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan affiliate account: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// DomainsForAccount returns every domain mapped to an account.
func (s *Store) DomainsForAccount(ctx context.Context, accountName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sending_domain FROM domain_account_mapping
		WHERE account_name = $1 ORDER BY sending_domain
	`, accountName)
	if err != nil {
		return nil, fmt.Errorf("domains for account %s: %w", accountName, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		out = append(out, domain)
	}
	return out, rows.Err()
}

// Create inserts a new mapping. The domain is normalized to lowercase.
func (s *Store) Create(ctx context.Context, m *Mapping) (*Mapping, error) {
	m.SendingDomain = strings.ToLower(strings.TrimSpace(m.SendingDomain))
	m.AccountName = strings.TrimSpace(m.AccountName)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO domain_account_mapping (sending_domain, account_name, notes, is_affiliate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sending_domain) DO NOTHING
		RETURNING id, created_at, updated_at
	`, m.SendingDomain, m.AccountName, m.Notes, m.IsAffiliate).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create mapping: %w", err)
	}
	return m, nil
}

// Upsert inserts a mapping or updates the account/affiliate flag of an
// existing one. Used by CSV import.
func (s *Store) Upsert(ctx context.Context, m *Mapping) error {
	m.SendingDomain = strings.ToLower(strings.TrimSpace(m.SendingDomain))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_account_mapping (sending_domain, account_name, notes, is_affiliate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sending_domain) DO UPDATE SET
			account_name = EXCLUDED.account_name,
			is_affiliate = EXCLUDED.is_affiliate,
			updated_at = NOW()
	`, m.SendingDomain, m.AccountName, m.Notes, m.IsAffiliate)
	if err != nil {
		return fmt.Errorf("upsert mapping: %w", err)
	}
	return nil
}

// Update modifies an existing mapping in place.
func (s *Store) Update(ctx context.Context, m *Mapping) (*Mapping, error) {
	m.SendingDomain = strings.ToLower(strings.TrimSpace(m.SendingDomain))
	err := s.db.QueryRowContext(ctx, `
		UPDATE domain_account_mapping
		SET sending_domain = $2, account_name = $3, notes = $4, is_affiliate = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, m.ID, m.SendingDomain, m.AccountName, m.Notes, m.IsAffiliate).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update mapping %d: %w", m.ID, err)
	}
	return m, nil
}

// GetByID loads one mapping.
func (s *Store) GetByID(ctx context.Context, id int64) (*Mapping, error) {
	var m Mapping
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sending_domain, account_name, notes, is_affiliate, created_at, updated_at
		FROM domain_account_mapping WHERE id = $1
	`, id).Scan(&m.ID, &m.SendingDomain, &m.AccountName, &m.Notes,
		&m.IsAffiliate, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping %d: %w", id, err)
	}
	return &m, nil
}

// BulkDelete removes the given mapping ids in one statement, returning how
// many actually existed. Unknown ids are not an error.
func (s *Store) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM domain_account_mapping WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete mappings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Delete removes a mapping by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domain_account_mapping WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mapping %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns mappings with optional substring search over domain and
// account, plus the total match count for pagination.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Mapping, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	var (
		total int
		rows  *sql.Rows
		err   error
	)
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM domain_account_mapping
			WHERE sending_domain ILIKE $1 OR account_name ILIKE $1
		`, pattern).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("count mappings: %w", err)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, sending_domain, account_name, notes, is_affiliate, created_at, updated_at
			FROM domain_account_mapping
			WHERE sending_domain ILIKE $1 OR account_name ILIKE $1
			ORDER BY account_name, sending_domain
			LIMIT $2 OFFSET $3
		`, pattern, limit, f.Offset)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM domain_account_mapping`).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("count mappings: %w", err)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, sending_domain, account_name, notes, is_affiliate, created_at, updated_at
			FROM domain_account_mapping
			ORDER BY account_name, sending_domain
			LIMIT $1 OFFSET $2
		`, limit, f.Offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.SendingDomain, &m.AccountName, &m.Notes,
			&m.IsAffiliate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// GetStats summarizes the mapping table.
func (s *Store) GetStats(ctx context.Context) (*Statistics, error) {
	var st Statistics
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT account_name) FROM domain_account_mapping
	`).Scan(&st.TotalMappings, &st.TotalAccounts); err != nil {
		return nil, fmt.Errorf("mapping stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_name, COUNT(*) AS domain_count
		FROM domain_account_mapping
		GROUP BY account_name
		ORDER BY domain_count DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ac AccountCount
		if err := rows.Scan(&ac.AccountName, &ac.DomainCount); err != nil {
			return nil, fmt.Errorf("scan account count: %w", err)
		}
		st.TopAccounts = append(st.TopAccounts, ac)
	}
	return &st, rows.Err()
}
