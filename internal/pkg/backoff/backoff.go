package backoff

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// Config 재시도 설정
type Config struct {
	Attempts      int           // 총 시도 횟수 (첫 시도 포함)
	BaseDelay     time.Duration // 지수 백오프 시작 간격
	JitterPercent uint64
	Name          string // 로그용
}

// DefaultConfig 3회, 1초부터 지수 증가, ±10% 지터
func DefaultConfig(name string) Config {
	return Config{
		Attempts:      3,
		BaseDelay:     1 * time.Second,
		JitterPercent: 10,
		Name:          name,
	}
}

// Do runs fn until it succeeds, returns a non-network error, or attempts run out.
// Only network-class errors are retried.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 1 * time.Second
	}

	b := retry.NewExponential(cfg.BaseDelay)
	if cfg.JitterPercent > 0 {
		b = retry.WithJitterPercent(cfg.JitterPercent, b)
	}
	b = retry.WithMaxRetries(uint64(cfg.Attempts-1), b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsNetworkError(err) {
			return err
		}

		log.Warn().
			Err(err).
			Str("op", cfg.Name).
			Int("attempt", attempt).
			Int("max_attempts", cfg.Attempts).
			Msg("Network error, retrying")
		return retry.RetryableError(err)
	})
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
