package pulsation

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestHasDate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("2026-08-30").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	got, err := store.HasDate(context.Background(), "2026-08-30")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = store.HasDate(context.Background(), "2026-08-31")
	require.NoError(t, err)
	assert.False(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRangeRowsSumsCounts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT from_domain, region, esp`).
		WithArgs("2026-08-01", "2026-08-07").
		WillReturnRows(sqlmock.NewRows([]string{
			"from_domain", "region", "esp",
			"sent", "delivered", "bounces", "soft_bounces", "spam_reports", "unsubscribes",
		}).AddRow("a.com", "US", "Sparkpost",
			int64(700), int64(650), int64(30), int64(5), int64(2), int64(4)))

	rows, err := store.RangeRows(context.Background(), "2026-08-01", "2026-08-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "a.com", rows[0].FromDomain)
	assert.Equal(t, int64(700), rows[0].Sent)
	require.NotNil(t, rows[0].Bounces)
	assert.Equal(t, int64(30), *rows[0].Bounces)
	require.NotNil(t, rows[0].SpamReports)
	assert.Equal(t, int64(2), *rows[0].SpamReports)
}
