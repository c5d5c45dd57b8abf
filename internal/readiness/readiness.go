// Package readiness implements the backend readiness gate: a plain TCP
// connect probe against the loopback interface. Connection success alone
// signals readiness; no handshake or payload is involved.
package readiness

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// TimeoutError reports that no connection was accepted within the allotted
// time. Callers treat it as advisory, not fatal.
type TimeoutError struct {
	Addr    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for %s after %s", e.Addr, e.Timeout)
}

// dialTimeout bounds a single connect attempt. A port that silently drops
// packets instead of refusing must not stretch the poll cadence.
const dialTimeout = 250 * time.Millisecond

// WaitForPort polls a TCP connect to 127.0.0.1:port until it succeeds, the
// timeout elapses, or ctx is cancelled. Attempts are paced at interval.
// On expiry it returns a *TimeoutError; on cancellation the context's
// error.
func WaitForPort(ctx context.Context, logger *zap.Logger, port int, timeout, interval time.Duration) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	return waitForAddr(ctx, logger, addr, timeout, interval)
}

func waitForAddr(ctx context.Context, logger *zap.Logger, addr string, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)

	logger.Info("waiting for backend port",
		zap.String("addr", addr),
		zap.Duration("timeout", timeout))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err == nil {
			conn.Close()
			logger.Info("backend is ready", zap.String("addr", addr))
			return nil
		}

		if time.Now().After(deadline) {
			return &TimeoutError{Addr: addr, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
