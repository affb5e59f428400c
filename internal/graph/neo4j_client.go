package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ClientConfig holds connection and pool settings for the Neo4j driver
type ClientConfig struct {
	URI      string
	User     string
	Password string
	Database string

	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
	MaxConnectionLifetime        time.Duration
	SocketConnectTimeout         time.Duration
}

// DefaultClientConfig returns pool settings tuned for a read-mostly service
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Database:                     "neo4j",
		MaxConnectionPoolSize:        50,
		ConnectionAcquisitionTimeout: 60 * time.Second,
		MaxConnectionLifetime:        time.Hour,
		SocketConnectTimeout:         5 * time.Second,
	}
}

// Client wraps the Neo4j driver with the database name and a component logger
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
	poolSize int
}

// NewClient creates a client against the default database
// Security: NEVER hardcode credentials
func NewClient(ctx context.Context, uri, user, password string) (*Client, error) {
	cfg := DefaultClientConfig()
	cfg.URI, cfg.User, cfg.Password = uri, user, password
	return NewClientWithConfig(ctx, cfg)
}

// NewClientWithConfig creates a client and verifies connectivity (fail fast on startup)
func NewClientWithConfig(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.URI == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("neo4j credentials missing: uri=%s, user=%s", cfg.URI, cfg.User)
	}
	defaults := DefaultClientConfig()
	if cfg.Database == "" {
		cfg.Database = defaults.Database
	}
	if cfg.MaxConnectionPoolSize <= 0 {
		cfg.MaxConnectionPoolSize = defaults.MaxConnectionPoolSize
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			if cfg.ConnectionAcquisitionTimeout > 0 {
				c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
			}
			if cfg.MaxConnectionLifetime > 0 {
				c.MaxConnectionLifetime = cfg.MaxConnectionLifetime
			}
			if cfg.SocketConnectTimeout > 0 {
				c.SocketConnectTimeout = cfg.SocketConnectTimeout
			}
			c.ConnectionLivenessCheckTimeout = 5 * time.Second
			c.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}

	logger := slog.Default().With("component", "neo4j")
	logger.Info("neo4j client connected",
		"uri", cfg.URI,
		"user", cfg.User,
		"database", cfg.Database,
		"max_pool_size", cfg.MaxConnectionPoolSize)

	return &Client{
		driver:   driver,
		logger:   logger,
		database: cfg.Database,
		poolSize: cfg.MaxConnectionPoolSize,
	}, nil
}

// Close closes the Neo4j driver connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	c.logger.Info("neo4j client closed")
	return nil
}

// HealthCheck verifies connectivity and that the database answers a trivial read
// Used by the /healthz endpoint and the pool watcher
func (c *Client) HealthCheck(ctx context.Context) error {
	txConfig := GetConfigForOperation("health_check")
	queryCtx, cancel := context.WithTimeout(ctx, txConfig.Timeout)
	defer cancel()

	if err := c.driver.VerifyConnectivity(queryCtx); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	if _, err := ExecuteWithRouting(queryCtx, c.driver, "RETURN 1 AS ok", nil, RoutingRead, c.database); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	return nil
}

// Driver returns the underlying Neo4j driver
// Used for lazy iteration during snapshot export
func (c *Client) Driver() neo4j.DriverWithContext {
	return c.driver
}

// Database returns the configured database name
func (c *Client) Database() string {
	return c.database
}
