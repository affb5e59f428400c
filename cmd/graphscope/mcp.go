package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/graphscope/internal/config"
	"github.com/rohankatakam/graphscope/internal/mcp"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the projection tools over MCP (stdio)",
	Long: `Expose select_subgraph, delete_node and expand_node as MCP tools on
stdin/stdout. Logs go to stderr.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := requireConfig(config.ValidationContextMCP); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, closeSnapshots, err := openSnapshots(true)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	be, err := openBackend(ctx, snapshots)
	if err != nil {
		return err
	}
	defer be.Close()

	key, err := resolveKey(ctx, be.catalog)
	if err != nil {
		return err
	}

	server := mcp.NewMCPServer(subgraph.NewEngine(be.store, engineOptions()), key, Version)
	logger.Info("MCP server ready on stdio")
	return mcp.RunStdio(ctx, server)
}
