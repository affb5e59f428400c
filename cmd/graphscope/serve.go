package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/graphscope/internal/config"
	"github.com/rohankatakam/graphscope/internal/server"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP projection service",
	Long: `Run the HTTP service consumed by the graph viewer.

The entity identifier key is resolved once before the listener opens; if it
cannot be resolved the service does not start.

Routes:
  GET  /ping, /getGraphData, /getTableData, /healthz, /metrics
  POST /retrieveSubgraph, /deleteNode, /expandNode`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the graph data endpoint in a browser once listening")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := requireConfig(config.ValidationContextServe); err != nil {
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

	tableSource, closeTables, err := openTables(snapshots)
	if err != nil {
		return err
	}
	defer closeTables()

	srv := server.New(server.Deps{
		Engine:    subgraph.NewEngine(be.store, engineOptions()),
		Key:       key,
		Snapshots: snapshots,
		Tables:    tableSource,
		Health:    be.health,
	}, server.Options{
		Addr:            cfg.Server.Addr,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	if serveOpen {
		openInBrowser(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if be.client != nil && cfg.Neo4j.HealthInterval > 0 {
		g.Go(func() error {
			be.client.WatchPoolHealth(gctx, cfg.Neo4j.HealthInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("graphscope stopped")
	return nil
}

func openInBrowser(addr net.Addr) {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s/getGraphData", net.JoinHostPort(host, port))
	if err := browser.OpenURL(url); err != nil {
		logger.WithError(err).Warn("Could not open browser")
		fmt.Fprintf(os.Stderr, "Open %s to view the graph snapshot\n", url)
	}
}
