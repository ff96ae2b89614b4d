// Package pgtest PostgreSQL 통합 테스트 헬퍼.
// KRX_TEST_DATABASE_URL 이 없으면 테스트를 건너뛴다.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
	"github.com/wonny/krxflow/internal/pkg/config"
)

// EnvURL 통합 테스트 DB 접속 정보
const EnvURL = "KRX_TEST_DATABASE_URL"

// migrateLockKey 패키지별 테스트 프로세스가 동시에 마이그레이션하지 않도록 잡는 advisory lock
const migrateLockKey = 7050_9000

// Open connects to the test database and applies migrations
func Open(t *testing.T) *postgres.Pool {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skip("Integration test - requires PostgreSQL (" + EnvURL + ")")
	}
	t.Setenv("DATABASE_URL", url)

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLockKey)
	require.NoError(t, err)
	defer conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, migrateLockKey)

	require.NoError(t, pool.Migrate(ctx))
	return pool
}

// Date YYYYMMDD
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// ClearDates deletes rows of the given dates now and again after the test
func ClearDates(t *testing.T, pool *postgres.Pool, tables []string, dates ...time.Time) {
	t.Helper()

	clear := func() {
		for _, table := range tables {
			for _, d := range dates {
				_, err := pool.Exec(context.Background(), `DELETE FROM `+table+` WHERE trade_date = $1`, d)
				require.NoError(t, err)
			}
		}
	}
	clear()
	t.Cleanup(clear)
}
