package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/graphscope/internal/config"
	"github.com/rohankatakam/graphscope/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
	slogger *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "graphscope",
	Short: "graphscope - subgraph projections over a property graph",
	Long: `graphscope serves read-only views of a Neo4j property graph: select the
subgraph induced by a set of ids, drop a node from a view, or expand a node's
neighborhood into it. The graph store is never modified.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger (stderr: stdout carries MCP traffic)
		logger = logrus.New()
		logger.SetOutput(os.Stderr)

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
		if cfg.Log.JSON {
			logger.SetFormatter(&logrus.JSONFormatter{})
		}

		// Store and projection layers log through slog
		slogger, err = logging.Setup(logging.Config{
			Level:      logging.ParseLevel(level),
			OutputFile: cfg.Log.File,
			JSONFormat: cfg.Log.JSON,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if slogger != nil {
			slogger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .graphscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`graphscope {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(configCmd)
}

// requireConfig validates cfg for the command and logs any warnings
func requireConfig(ctx config.ValidationContext) error {
	if usesNeo4j(ctx) {
		// stdin belongs to the protocol under mcp
		source, err := config.NewCredentialManager().ResolveNeo4jPassword(cfg, ctx != config.ValidationContextMCP)
		if err != nil {
			return err
		}
		logger.WithField("source", source).Debug("Resolved Neo4j password")
	}

	warnings, err := cfg.Require(ctx)
	for _, w := range warnings {
		logger.Warn(w)
	}
	return err
}

func usesNeo4j(ctx config.ValidationContext) bool {
	switch ctx {
	case config.ValidationContextExport, config.ValidationContextSchema:
		return true
	default:
		return cfg.Store.Backend != "snapshot"
	}
}
