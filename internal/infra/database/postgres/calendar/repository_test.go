package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/calendar"
	pgcalendar "github.com/wonny/krxflow/internal/infra/database/postgres/calendar"
	"github.com/wonny/krxflow/internal/testutil/pgtest"
)

// testClassification 실제 stock 캘린더와 분리
const testClassification = "pgtest"

func setup(t *testing.T) *pgcalendar.Repository {
	t.Helper()
	pool := pgtest.Open(t)

	clear := func() {
		_, err := pool.Exec(context.Background(),
			`DELETE FROM market.trading_day WHERE classification = $1`, testClassification)
		require.NoError(t, err)
	}
	clear()
	t.Cleanup(clear)

	return pgcalendar.NewRepository(pool)
}

func dates(t *testing.T, ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = pgtest.Date(t, s)
	}
	return out
}

func TestRepository_ReplaceAllAndLookup(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	days := calendar.BuildDays(testClassification,
		dates(t, "20250407", "20250402", "20250403", "20250404", "20250401"))
	n, err := repo.ReplaceAll(ctx, testClassification, days)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	seq, err := repo.GetSequence(ctx, testClassification, pgtest.Date(t, "20250404"))
	require.NoError(t, err)
	assert.Equal(t, 4, seq)

	_, err = repo.GetSequence(ctx, testClassification, pgtest.Date(t, "20250405"))
	assert.ErrorIs(t, err, calendar.ErrNotFound)

	window, err := repo.ListBySequence(ctx, testClassification, 2, 4)
	require.NoError(t, err)
	require.Len(t, window, 3)
	for i, d := range window {
		assert.Equal(t, i+2, d.Sequence)
	}
	assert.Equal(t, "20250402", calendar.FormatDate(window[0].Date))
	assert.Equal(t, "20250404", calendar.FormatDate(window[2].Date))

	between, err := repo.ListBetween(ctx, testClassification, pgtest.Date(t, "20250403"), pgtest.Date(t, "20250406"))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, "20250403", calendar.FormatDate(between[0].Date))
	assert.Equal(t, "20250404", calendar.FormatDate(between[1].Date))
}

func TestRepository_ListBySequence_ShortRange(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	_, err := repo.ReplaceAll(ctx, testClassification,
		calendar.BuildDays(testClassification, dates(t, "20250401", "20250402")))
	require.NoError(t, err)

	window, err := repo.ListBySequence(ctx, testClassification, -4, 2)
	require.NoError(t, err)
	assert.Len(t, window, 2)
}

func TestRepository_ReplaceAll_DropsOldRows(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	_, err := repo.ReplaceAll(ctx, testClassification,
		calendar.BuildDays(testClassification, dates(t, "20250401", "20250402", "20250403")))
	require.NoError(t, err)

	_, err = repo.ReplaceAll(ctx, testClassification,
		calendar.BuildDays(testClassification, dates(t, "20250402", "20250403")))
	require.NoError(t, err)

	_, err = repo.GetSequence(ctx, testClassification, pgtest.Date(t, "20250401"))
	assert.ErrorIs(t, err, calendar.ErrNotFound)

	seq, err := repo.GetSequence(ctx, testClassification, pgtest.Date(t, "20250403"))
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}
