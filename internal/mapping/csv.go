package mapping

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
)

// ImportCSV reads mappings from a CSV stream with a header row of
// sending_domain, account_name and optional is_affiliate ("Yes"/"No", truthy
// variants accepted). Existing domains are updated. Returns counts of
// imported and skipped rows.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	domainIdx, ok := col["sending_domain"]
	if !ok {
		return 0, 0, fmt.Errorf("csv missing sending_domain column")
	}
	accountIdx, ok := col["account_name"]
	if !ok {
		return 0, 0, fmt.Errorf("csv missing account_name column")
	}
	affiliateIdx, hasAffiliate := col["is_affiliate"]

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("read csv row: %w", err)
		}

		domain := strings.ToLower(strings.TrimSpace(record[domainIdx]))
		account := strings.TrimSpace(record[accountIdx])
		if domain == "" || account == "" {
			skipped++
			continue
		}

		isAffiliate := false
		if hasAffiliate && affiliateIdx < len(record) {
			switch strings.ToLower(strings.TrimSpace(record[affiliateIdx])) {
			case "yes", "true", "1":
				isAffiliate = true
			}
		}

		m := Mapping{SendingDomain: domain, AccountName: account, IsAffiliate: isAffiliate}
		if err := s.Upsert(ctx, &m); err != nil {
			logger.Warn("csv import row failed", "domain", domain, "error", err)
			skipped++
			continue
		}
		imported++
	}

	logger.Info("csv import complete", "imported", imported, "skipped", skipped)
	return imported, skipped, nil
}

// ExportCSV writes every mapping to a CSV stream, ordered by account then
// domain. Returns the number of rows written.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	mappings, _, err := s.List(ctx, ListFilter{Limit: 1 << 20})
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"sending_domain", "account_name", "is_affiliate"}); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range mappings {
		affiliate := "No"
		if m.IsAffiliate {
			affiliate = "Yes"
		}
		if err := writer.Write([]string{m.SendingDomain, m.AccountName, affiliate}); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return len(mappings), writer.Error()
}
