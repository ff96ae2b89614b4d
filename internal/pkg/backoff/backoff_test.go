package backoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) Config {
	return Config{Attempts: attempts, BaseDelay: time.Millisecond, Name: "test"}
}

func TestDo_RetriesNetworkErrors(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return netErr
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, netErr)
}

func TestDo_StopsOnNonNetworkError(t *testing.T) {
	sentinel := errors.New("status 500")

	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unexpected eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
		{"url error", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("reset")}, true},
		{"op error", &net.OpError{Op: "read", Err: errors.New("reset")}, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("bad csv"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}
