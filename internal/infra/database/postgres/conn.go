package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog/log"
	"github.com/wonny/krxflow/internal/pkg/config"
	applogger "github.com/wonny/krxflow/internal/pkg/logger"
)

// Schemas owned by the pipeline
var Schemas = []string{"market", "analysis", "system"}

// Pool wraps pgxpool.Pool
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool
// SSOT: config.Database.URL에서만 연결 정보를 가져옴
func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	log.Debug().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Msg("Connecting to PostgreSQL...")

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// 파일 로깅 시 쿼리 트레이서 + pgx 내부 로그를 query.log 로
	if cfg.Logging.FileEnabled {
		queryLogger := applogger.NewQueryLogger(
			cfg.Logging.FilePath,
			cfg.Logging.RotationSize,
			cfg.Logging.RetentionDays,
		)

		poolConfig.ConnConfig.Tracer = multitracer.New(
			NewQueryLogger(queryLogger),
			&tracelog.TraceLog{
				Logger:   NewPgxZerologAdapter(queryLogger),
				LogLevel: traceLevel(cfg.Logging.Level),
			},
		)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Msg("PostgreSQL connected")

	if err := checkSchemas(ctx, pool); err != nil {
		log.Warn().Err(err).Msg("Schema check failed, but continuing...")
	}

	return &Pool{Pool: pool}, nil
}

func traceLevel(level string) tracelog.LogLevel {
	switch level {
	case "trace":
		return tracelog.LogLevelTrace
	case "debug":
		return tracelog.LogLevelDebug
	case "warn":
		return tracelog.LogLevelWarn
	case "error":
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelInfo
	}
}

// checkSchemas warns when migrations have not been applied yet
func checkSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	for _, schema := range Schemas {
		var exists bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM pg_namespace WHERE nspname = $1
			)
		`, schema).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check schema %s: %w", schema, err)
		}

		if !exists {
			log.Warn().
				Str("schema", schema).
				Msg("Schema does not exist, run `krx migrate`")
		}
	}
	return nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	log.Debug().Msg("Closing PostgreSQL connection pool...")
	p.Pool.Close()
}
