package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestQueryLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	ql := NewQueryLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	ctx := ql.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	ql.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Contains(t, buf.String(), "Query executed")

	buf.Reset()
	ql.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	slow := context.WithValue(context.Background(), queryStartKey{}, time.Now().Add(-2*SlowQueryThreshold))
	ql.TraceQueryEnd(slow, nil, pgx.TraceQueryEndData{})
	assert.Contains(t, buf.String(), "Slow query detected")
}

func TestTraceLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelDebug, traceLevel("debug"))
	assert.Equal(t, tracelog.LogLevelWarn, traceLevel("warn"))
	assert.Equal(t, tracelog.LogLevelInfo, traceLevel("unknown"))
}
