package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/identity"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextServe - graphscope serve needs a graph store, snapshots and tables
	ValidationContextServe ValidationContext = "serve"
	// ValidationContextMCP - graphscope mcp needs a graph store
	ValidationContextMCP ValidationContext = "mcp"
	// ValidationContextExport - graphscope export reads Neo4j and writes a snapshot
	ValidationContextExport ValidationContext = "export"
	// ValidationContextSchema - graphscope schema reads Neo4j
	ValidationContextSchema ValidationContext = "schema"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Validate validates configuration for the given context with auto-detected mode
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	return c.ValidateWithMode(ctx, DetectMode())
}

// ValidateWithMode validates configuration for the given context and deployment mode
func (c *Config) ValidateWithMode(ctx ValidationContext, mode DeploymentMode) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextServe:
		c.validateStore(result, mode)
		c.validateServer(result)
		c.validateTables(result)
		c.validateIdentity(result)
		c.validateExpand(result)
	case ValidationContextMCP:
		c.validateStore(result, mode)
		c.validateIdentity(result)
		c.validateExpand(result)
	case ValidationContextExport:
		c.validateNeo4j(result, true, mode)
		c.validateIdentity(result)
		if c.Data.LocalPath == "" && c.Data.BoltPath == "" {
			result.AddError("export needs data.local_path or data.bolt_path as a destination")
		}
	case ValidationContextSchema:
		c.validateNeo4j(result, true, mode)
		c.validateIdentity(result)
	case ValidationContextAll:
		c.validateStore(result, mode)
		c.validateServer(result)
		c.validateTables(result)
		c.validateIdentity(result)
		c.validateExpand(result)
		c.validateLog(result)
	}

	return result
}

// Require validates for ctx and returns a ConfigError when anything is wrong.
// Warnings are returned for the caller to log.
func (c *Config) Require(ctx ValidationContext) ([]string, error) {
	mode := DetectMode()
	result := c.ValidateWithMode(ctx, mode)
	if result.HasErrors() {
		return result.Warnings, errors.ConfigError(result.Error()).
			WithContext("validation_context", string(ctx)).
			WithContext("deployment_mode", mode.String())
	}
	return result.Warnings, nil
}

func (c *Config) validateStore(result *ValidationResult, mode DeploymentMode) {
	switch c.Store.Backend {
	case "neo4j":
		c.validateNeo4j(result, true, mode)
	case "snapshot":
		if c.Data.BoltPath == "" && c.Data.LocalPath == "" {
			result.AddError("store.backend=snapshot needs data.local_path or data.bolt_path")
		}
	default:
		result.AddError("store.backend must be neo4j or snapshot, got %q", c.Store.Backend)
	}
}

func (c *Config) validateNeo4j(result *ValidationResult, required bool, mode DeploymentMode) {
	if c.Neo4j.URI == "" {
		if required {
			result.AddError("NEO4J_URI is required but not set")
		} else {
			result.AddWarning("NEO4J_URI is not set")
		}
	} else {
		u, err := url.Parse(c.Neo4j.URI)
		if err != nil {
			result.AddError("NEO4J_URI is invalid: %v", err)
		} else {
			switch u.Scheme {
			case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
			default:
				result.AddError("NEO4J_URI has unsupported scheme %q", u.Scheme)
			}
			if strings.Contains(u.Host, "localhost") && mode.RequiresSecureCredentials() {
				result.AddError("Neo4j URI uses localhost. In %s mode (%s), you must provide a remote database URI.", mode, mode.Description())
			}
		}
	}

	if c.Neo4j.User == "" {
		if required {
			result.AddError("NEO4J_USER is required but not set")
		} else {
			result.AddWarning("NEO4J_USER is not set")
		}
	}

	if c.Neo4j.Password == "" {
		if required {
			result.AddError("NEO4J_PASSWORD is required but not set. Set it via environment variable or .env file.")
		} else {
			result.AddWarning("NEO4J_PASSWORD is not set")
		}
	} else {
		insecurePasswords := []string{"password", "neo4j", "test"}
		for _, insecure := range insecurePasswords {
			if c.Neo4j.Password != insecure {
				continue
			}
			if mode.RequiresSecureCredentials() {
				result.AddError("NEO4J_PASSWORD is set to an insecure default (%s). This is not allowed in %s mode. Set a secure password via %s.", insecure, mode, mode.ConfigSource())
			} else {
				result.AddWarning("NEO4J_PASSWORD is set to a very common password (%s). Consider changing it even for local development.", insecure)
			}
		}
	}

	if c.Neo4j.Database == "" {
		result.AddWarning("NEO4J_DATABASE is not set, will use 'neo4j' as default")
	}

	if c.Neo4j.MaxPoolSize <= 0 {
		result.AddWarning("neo4j.max_pool_size is invalid, will use default (50)")
	}
}

func (c *Config) validateServer(result *ValidationResult) {
	if c.Server.Addr == "" {
		result.AddError("server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		result.AddError("server.rate_limit must be >= 0, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		result.AddError("server.rate_burst must be positive when rate limiting is enabled")
	}
	if c.Server.MaxBodyBytes <= 0 {
		result.AddError("server.max_body_bytes must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		result.AddWarning("server.shutdown_timeout is not set, shutdown will not wait for in-flight requests")
	}
	if len(c.Server.CORSOrigins) == 0 {
		result.AddWarning("server.cors_origins is empty, browsers on other origins will be refused")
	}
}

func (c *Config) validateTables(result *ValidationResult) {
	switch c.Tables.Source {
	case "json":
		if c.Data.LocalPath == "" && c.Data.BoltPath == "" {
			result.AddWarning("no data.local_path or data.bolt_path, /getTableData will return 404")
		}
	case "sql":
		switch c.Tables.Driver {
		case "sqlite3", "postgres", "pgx":
		default:
			result.AddError("tables.driver must be sqlite3, postgres or pgx, got %q", c.Tables.Driver)
		}
		if c.Tables.DSN == "" {
			result.AddError("tables.dsn is required when tables.source=sql")
		}
		if len(c.Tables.Names) == 0 {
			result.AddWarning("tables.names is empty, /getTableData will return no tables")
		}
	default:
		result.AddError("tables.source must be json or sql, got %q", c.Tables.Source)
	}
}

func (c *Config) validateIdentity(result *ValidationResult) {
	mode, err := identity.ParseMode(c.Identity.Mode)
	if err != nil {
		result.AddError("identity.mode: %v", err)
		return
	}
	if mode != identity.ModeLabel && c.Identity.FallbackProperty == "" {
		result.AddWarning("identity.fallback_property is empty, will use 'county'")
	}
}

func (c *Config) validateExpand(result *ValidationResult) {
	if c.Expand.DefaultLimit < 0 {
		result.AddError("expand.default_limit must be >= 0, got %d", c.Expand.DefaultLimit)
	}
	if c.Expand.MaxLimit <= 0 {
		result.AddError("expand.max_limit must be positive, got %d", c.Expand.MaxLimit)
	}
	if c.Expand.MaxLimit > 0 && c.Expand.DefaultLimit > c.Expand.MaxLimit {
		result.AddWarning("expand.default_limit (%d) exceeds expand.max_limit (%d) and will be clamped", c.Expand.DefaultLimit, c.Expand.MaxLimit)
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result.AddWarning("log.level %q is not recognized, will use info", c.Log.Level)
	}
}
