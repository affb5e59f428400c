package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/rohankatakam/graphscope/internal/metrics"
)

// PoolStats represents connection pool statistics
//
// Note: The Neo4j Go driver doesn't expose runtime pool metrics.
// For detailed monitoring use Neo4j's own metrics endpoint.
type PoolStats struct {
	MaxPoolSize int
	Database    string
}

// GetPoolStats returns the configured pool settings
func (c *Client) GetPoolStats() PoolStats {
	return PoolStats{
		MaxPoolSize: c.poolSize,
		Database:    c.database,
	}
}

// PoolHealthStatus represents the health of the connection pool
type PoolHealthStatus struct {
	Healthy       bool
	Message       string
	LastCheckTime time.Time
}

// CheckPoolHealth performs a health check and reports its latency
func (c *Client) CheckPoolHealth(ctx context.Context) (*PoolHealthStatus, error) {
	startTime := time.Now()

	err := c.HealthCheck(ctx)

	status := &PoolHealthStatus{
		LastCheckTime: time.Now(),
	}

	if err != nil {
		status.Message = fmt.Sprintf("Health check failed: %v", err)
		return status, err
	}

	checkDuration := time.Since(startTime)
	if threshold := GetConfigForOperation("health_check").Timeout; checkDuration > threshold {
		status.Message = fmt.Sprintf("Health check slow: %v (threshold: %v)", checkDuration, threshold)
		return status, fmt.Errorf("health check exceeded %v", threshold)
	}

	status.Healthy = true
	status.Message = fmt.Sprintf("Pool healthy (check took %v)", checkDuration)
	return status, nil
}

// WatchPoolHealth runs periodic health checks until ctx is cancelled and
// publishes the outcome on the graphscope_store_up gauge.
//
// Example usage:
//
//	go client.WatchPoolHealth(ctx, 30*time.Second)
func (c *Client) WatchPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("starting pool health monitor", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("pool health monitor stopped")
			return
		case <-ticker.C:
			status, err := c.CheckPoolHealth(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				c.logger.Warn("pool health check failed", "error", err)
				metrics.SetStoreUp(false)
				continue
			}
			c.logger.Debug("pool health check passed", "message", status.Message)
			metrics.SetStoreUp(true)
		}
	}
}
