package postgres

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents database health status
type HealthStatus struct {
	Status       string // healthy, degraded, unhealthy
	ResponseTime time.Duration
	ActiveConns  int32
	IdleConns    int32
	TotalConns   int32
	MaxConns     int32
	Migration    int64 // goose version, -1 if unknown
	CheckedAt    time.Time
	Error        string
}

// Health pings the database and reports pool stats and the applied migration version
func (p *Pool) Health(ctx context.Context) *HealthStatus {
	start := time.Now()

	status := &HealthStatus{
		CheckedAt: start,
		Status:    "healthy",
		Migration: -1,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = fmt.Sprintf("ping failed: %v", err)
		status.ResponseTime = time.Since(start)
		return status
	}

	stats := p.Stat()
	status.ActiveConns = stats.AcquiredConns()
	status.IdleConns = stats.IdleConns()
	status.TotalConns = stats.TotalConns()
	status.MaxConns = stats.MaxConns()

	if v, err := p.MigrationVersion(ctx); err == nil {
		status.Migration = v
	} else {
		status.Status = "degraded"
		status.Error = fmt.Sprintf("migration version: %v", err)
	}

	status.ResponseTime = time.Since(start)
	return status
}
