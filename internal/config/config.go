package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Graph database connection
	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`

	// Which graph store backs the projectors
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// HTTP server
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Pre-materialized snapshots (graph + table list)
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Tabular reference data
	Tables TablesConfig `yaml:"tables" mapstructure:"tables"`

	// Display grouping key
	Identity IdentityConfig `yaml:"identity" mapstructure:"identity"`

	// Node expansion bounds
	Expand ExpandConfig `yaml:"expand" mapstructure:"expand"`

	// Logging
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

type Neo4jConfig struct {
	URI                string        `yaml:"uri" mapstructure:"uri"`
	User               string        `yaml:"user" mapstructure:"user"`
	Password           string        `yaml:"password" mapstructure:"password"`
	Database           string        `yaml:"database" mapstructure:"database"`
	MaxPoolSize        int           `yaml:"max_pool_size" mapstructure:"max_pool_size"`
	AcquisitionTimeout time.Duration `yaml:"acquisition_timeout" mapstructure:"acquisition_timeout"`
	HealthInterval     time.Duration `yaml:"health_interval" mapstructure:"health_interval"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // "neo4j", "snapshot"
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // Requests per second on projection routes, 0 disables
	RateBurst       int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type DataConfig struct {
	LocalPath  string `yaml:"local_path" mapstructure:"local_path"`
	GraphFile  string `yaml:"graph_file" mapstructure:"graph_file"`
	TablesFile string `yaml:"tables_file" mapstructure:"tables_file"`
	BoltPath   string `yaml:"bolt_path" mapstructure:"bolt_path"` // When set, snapshots are read from bbolt instead of files
}

type TablesConfig struct {
	Source   string   `yaml:"source" mapstructure:"source"` // "json", "sql"
	Driver   string   `yaml:"driver" mapstructure:"driver"` // "sqlite3", "postgres", "pgx"
	DSN      string   `yaml:"dsn" mapstructure:"dsn"`
	Names    []string `yaml:"names" mapstructure:"names"`
	RowLimit int      `yaml:"row_limit" mapstructure:"row_limit"`
}

type IdentityConfig struct {
	Mode             string `yaml:"mode" mapstructure:"mode"` // "auto", "label", "property"
	FallbackProperty string `yaml:"fallback_property" mapstructure:"fallback_property"`
}

type ExpandConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit     int `yaml:"max_limit" mapstructure:"max_limit"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file" mapstructure:"file"` // Optional slog file under the log directory
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:                "bolt://localhost:7687",
			User:               "neo4j",
			Database:           "neo4j",
			MaxPoolSize:        50,
			AcquisitionTimeout: 60 * time.Second,
			HealthInterval:     30 * time.Second,
		},
		Store: StoreConfig{
			Backend: "neo4j",
		},
		Server: ServerConfig{
			Addr:            ":5000",
			CORSOrigins:     []string{"*"},
			RateLimit:       50,
			RateBurst:       100,
			MaxBodyBytes:    1 << 20, // 1MB
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			LocalPath:  "local_data",
			GraphFile:  "input_graph.json",
			TablesFile: "ppod_table.json",
		},
		Tables: TablesConfig{
			Source:   "json",
			Driver:   "sqlite3",
			RowLimit: 10000,
		},
		Identity: IdentityConfig{
			Mode:             "auto",
			FallbackProperty: "county",
		},
		Expand: ExpandConfig{
			DefaultLimit: 5,
			MaxLimit:     100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file
// Precedence: explicit env overrides > GRAPHSCOPE_* env > config file > defaults
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	// GRAPHSCOPE_SERVER_ADDR -> server.addr
	v.SetEnvPrefix("GRAPHSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".graphscope")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".graphscope"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range settings(cfg) {
		v.SetDefault(key, value)
	}
}

// settings flattens cfg into viper keys. Durations are written as strings ("30s").
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"neo4j.uri":                 cfg.Neo4j.URI,
		"neo4j.user":                cfg.Neo4j.User,
		"neo4j.password":            cfg.Neo4j.Password,
		"neo4j.database":            cfg.Neo4j.Database,
		"neo4j.max_pool_size":       cfg.Neo4j.MaxPoolSize,
		"neo4j.acquisition_timeout": cfg.Neo4j.AcquisitionTimeout.String(),
		"neo4j.health_interval":     cfg.Neo4j.HealthInterval.String(),

		"store.backend": cfg.Store.Backend,

		"server.addr":             cfg.Server.Addr,
		"server.cors_origins":     cfg.Server.CORSOrigins,
		"server.rate_limit":       cfg.Server.RateLimit,
		"server.rate_burst":       cfg.Server.RateBurst,
		"server.max_body_bytes":   cfg.Server.MaxBodyBytes,
		"server.read_timeout":     cfg.Server.ReadTimeout.String(),
		"server.write_timeout":    cfg.Server.WriteTimeout.String(),
		"server.shutdown_timeout": cfg.Server.ShutdownTimeout.String(),

		"data.local_path":  cfg.Data.LocalPath,
		"data.graph_file":  cfg.Data.GraphFile,
		"data.tables_file": cfg.Data.TablesFile,
		"data.bolt_path":   cfg.Data.BoltPath,

		"tables.source":    cfg.Tables.Source,
		"tables.driver":    cfg.Tables.Driver,
		"tables.dsn":       cfg.Tables.DSN,
		"tables.names":     cfg.Tables.Names,
		"tables.row_limit": cfg.Tables.RowLimit,

		"identity.mode":              cfg.Identity.Mode,
		"identity.fallback_property": cfg.Identity.FallbackProperty,

		"expand.default_limit": cfg.Expand.DefaultLimit,
		"expand.max_limit":     cfg.Expand.MaxLimit,

		"log.level": cfg.Log.Level,
		"log.json":  cfg.Log.JSON,
		"log.file":  cfg.Log.File,
	}
}

// loadEnvFiles loads .env files in order of precedence.
// godotenv never overrides variables that are already set.
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".graphscope", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the conventional unprefixed variables
func applyEnvOverrides(cfg *Config) {
	// Neo4j configuration
	cfg.Neo4j.URI = GetString("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = GetString("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = GetString("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = GetString("NEO4J_DATABASE", cfg.Neo4j.Database)
	cfg.Neo4j.MaxPoolSize = GetInt("NEO4J_MAX_POOL_SIZE", cfg.Neo4j.MaxPoolSize)

	// Data configuration
	cfg.Data.LocalPath = expandPath(GetString("LOCAL_DATA_PATH", cfg.Data.LocalPath))
	cfg.Data.BoltPath = expandPath(GetString("SNAPSHOT_DB_PATH", cfg.Data.BoltPath))

	// Tables configuration
	cfg.Tables.DSN = GetString("TABLES_DSN", cfg.Tables.DSN)

	// Identity and expansion
	cfg.Identity.Mode = GetString("IDENTITY_MODE", cfg.Identity.Mode)
	cfg.Expand.DefaultLimit = GetInt("EXPAND_DEFAULT_LIMIT", cfg.Expand.DefaultLimit)

	// Server
	cfg.Server.Addr = GetString("GRAPHSCOPE_ADDR", cfg.Server.Addr)
	cfg.Server.ShutdownTimeout = GetDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	// Logging
	cfg.Log.Level = GetString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.JSON = GetBool("LOG_JSON", cfg.Log.JSON)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	out := *c
	if out.Neo4j.Password != "" {
		out.Neo4j.Password = "********"
	}
	if out.Tables.DSN != "" {
		out.Tables.DSN = redactDSN(out.Tables.DSN)
	}
	return &out
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":********"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range settings(c) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
