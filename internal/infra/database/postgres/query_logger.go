package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// SlowQueryThreshold 이 시간을 넘는 쿼리는 WARN 으로 기록
const SlowQueryThreshold = 500 * time.Millisecond

type queryStartKey struct{}

// QueryLogger implements pgx.QueryTracer for logging database queries
type QueryLogger struct {
	logger zerolog.Logger
}

// NewQueryLogger creates a new query logger
func NewQueryLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{logger: logger}
}

// TraceQueryStart is called at the beginning of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

// TraceQueryEnd is called at the end of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		start = time.Now()
	}
	duration := time.Since(start)

	switch {
	case data.Err != nil:
		ql.logger.Error().
			Err(data.Err).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Query failed")
	case duration > SlowQueryThreshold:
		ql.logger.Warn().
			Int64("duration_ms", duration.Milliseconds()).
			Str("command_tag", data.CommandTag.String()).
			Msg("Slow query detected")
	default:
		ql.logger.Debug().
			Int64("duration_ms", duration.Milliseconds()).
			Str("command_tag", data.CommandTag.String()).
			Msg("Query executed")
	}
}

// PgxZerologAdapter adapts zerolog.Logger to pgx's Logger interface
type PgxZerologAdapter struct {
	logger zerolog.Logger
}

// NewPgxZerologAdapter creates a new adapter
func NewPgxZerologAdapter(logger zerolog.Logger) *PgxZerologAdapter {
	return &PgxZerologAdapter{logger: logger}
}

// Log implements tracelog.Logger
func (l *PgxZerologAdapter) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event

	switch level {
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}

	event.Fields(data).Msg(msg)
}
