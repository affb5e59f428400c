package graph

import (
	"maps"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// TransactionConfig defines timeout and metadata for transactions
//
// Transaction metadata is logged by Neo4j and visible in query.log,
// which lets slow projection queries be traced back to their operation.
type TransactionConfig struct {
	Timeout  time.Duration
	Metadata map[string]any
}

// DefaultTransactionConfigs returns configs per store operation. All of them are reads.
func DefaultTransactionConfigs() map[string]TransactionConfig {
	return map[string]TransactionConfig{
		// Selector: nodes and relationships by id
		"node_lookup": {
			Timeout: 15 * time.Second,
			Metadata: map[string]any{
				"operation": "node_lookup",
				"component": "selector",
				"type":      "read",
			},
		},
		"relationship_lookup": {
			Timeout: 15 * time.Second,
			Metadata: map[string]any{
				"operation": "relationship_lookup",
				"component": "selector",
				"type":      "read",
			},
		},

		// Expansion: one-hop neighborhood, bounded by LIMIT
		"neighbor_query": {
			Timeout: 15 * time.Second,
			Metadata: map[string]any{
				"operation": "neighbor_query",
				"component": "expansion",
				"type":      "read",
			},
		},

		// Label catalog and per-label counts
		"schema_introspection": {
			Timeout: 30 * time.Second,
			Metadata: map[string]any{
				"operation": "schema_introspection",
				"type":      "schema",
			},
		},

		// Full graph scan for snapshot export
		"snapshot_export": {
			Timeout: 10 * time.Minute,
			Metadata: map[string]any{
				"operation": "snapshot_export",
				"type":      "read",
			},
		},

		// Health checks
		"health_check": {
			Timeout: 5 * time.Second, // Health checks must be fast
			Metadata: map[string]any{
				"operation": "health_check",
				"type":      "read",
			},
		},
	}
}

// AsNeo4jConfig converts to Neo4j transaction config functions
// Use with ExecuteRead
func (tc TransactionConfig) AsNeo4jConfig() []func(*neo4j.TransactionConfig) {
	configs := []func(*neo4j.TransactionConfig){}

	if tc.Timeout > 0 {
		configs = append(configs, neo4j.WithTxTimeout(tc.Timeout))
	}
	if len(tc.Metadata) > 0 {
		configs = append(configs, neo4j.WithTxMetadata(tc.Metadata))
	}

	return configs
}

// GetConfigForOperation retrieves the appropriate transaction config
// Returns default config if operation not found
func GetConfigForOperation(operation string) TransactionConfig {
	configs := DefaultTransactionConfigs()
	if config, ok := configs[operation]; ok {
		return config
	}

	return TransactionConfig{
		Timeout: 60 * time.Second,
		Metadata: map[string]any{
			"operation": operation,
			"type":      "unknown",
		},
	}
}

// WithCustomMetadata creates a config with one extra metadata entry
func (tc TransactionConfig) WithCustomMetadata(key string, value any) TransactionConfig {
	newConfig := TransactionConfig{
		Timeout:  tc.Timeout,
		Metadata: make(map[string]any, len(tc.Metadata)+1),
	}
	maps.Copy(newConfig.Metadata, tc.Metadata)
	newConfig.Metadata[key] = value
	return newConfig
}

// WithTimeout creates a config with a custom timeout
func (tc TransactionConfig) WithTimeout(timeout time.Duration) TransactionConfig {
	return TransactionConfig{
		Timeout:  timeout,
		Metadata: tc.Metadata,
	}
}
