// Package snapshot persists timestamped copies of report payloads keyed by
// date range and report type. Saves are append-only: a new snapshot never
// overwrites an older one for the same range, so the comparison machinery can
// always pick the most recent capture of any period.
package snapshot

import "time"

// DetectMonthYear reports whether a date range is a full calendar month and,
// if so, which one. Strict rules: the range must start on the 1st, end on the
// 1st of the following month (exclusive end), and span 28-31 days. Anything
// else gets no month/year tag but is still stored and compared by exact date
// match.
func DetectMonthYear(fromDate, toDate string, durationDays int) (month, year int, ok bool) {
	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return 0, 0, false
	}
	to, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return 0, 0, false
	}

	if from.Day() != 1 || to.Day() != 1 {
		return 0, 0, false
	}
	if durationDays < 28 || durationDays > 31 {
		return 0, 0, false
	}

	return int(from.Month()), from.Year(), true
}
