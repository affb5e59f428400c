package graph

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/rohankatakam/graphscope/internal/metrics"
)

// TimeoutMonitor runs store operations under their transaction timeout,
// records their latency, and warns about queries approaching the timeout
type TimeoutMonitor struct {
	logger       *slog.Logger
	warningRatio float64 // Warn when execution reaches this share of the timeout
}

// NewTimeoutMonitor creates a monitor with default settings
func NewTimeoutMonitor() *TimeoutMonitor {
	return &TimeoutMonitor{
		logger:       slog.Default().With("component", "timeout_monitor"),
		warningRatio: 0.8,
	}
}

// MonitorWithContext executes fn with a context bounded by timeout
//
// Example usage:
//
//	monitor := NewTimeoutMonitor()
//	err := monitor.MonitorWithContext(ctx, "neighbor_query", 15*time.Second, func(ctx context.Context) error {
//	  return store.runNeighbors(ctx)
//	})
func (tm *TimeoutMonitor) MonitorWithContext(
	ctx context.Context,
	operation string,
	timeout time.Duration,
	fn func(context.Context) error,
) error {
	timeoutCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(timeoutCtx)
	duration := time.Since(start)

	metrics.ObserveStoreQuery(operation, duration, err)

	if err != nil {
		if stderrors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			tm.logger.Error("operation timed out",
				"operation", operation,
				"duration_seconds", duration.Seconds(),
				"timeout_seconds", timeout.Seconds())
		} else {
			tm.logger.Warn("operation failed",
				"operation", operation,
				"duration_seconds", duration.Seconds(),
				"error", err)
		}
		return err
	}

	if timeout > 0 && duration >= time.Duration(float64(timeout)*tm.warningRatio) {
		percentUsed := (duration.Seconds() / timeout.Seconds()) * 100
		tm.logger.Warn("operation approaching timeout",
			"operation", operation,
			"duration_seconds", duration.Seconds(),
			"timeout_seconds", timeout.Seconds(),
			"percent_used", percentUsed)
	} else {
		tm.logger.Debug("operation completed",
			"operation", operation,
			"duration_seconds", duration.Seconds())
	}

	return nil
}
