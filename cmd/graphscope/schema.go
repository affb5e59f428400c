package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/graphscope/internal/config"
	"github.com/rohankatakam/graphscope/internal/graph"
)

var schemaCounts bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show labels, relationship types and the resolved entity key",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaCounts, "counts", false, "include node and relationship counts")
}

func runSchema(cmd *cobra.Command, args []string) error {
	if err := requireConfig(config.ValidationContextSchema); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := connectNeo4j(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	store := graph.NewNeo4jStore(client)

	labels, err := store.Labels(ctx)
	if err != nil {
		return err
	}
	types, err := store.RelationshipTypes(ctx)
	if err != nil {
		return err
	}

	var labelCounts, typeCounts map[string]int64
	if schemaCounts {
		if labelCounts, err = store.CountByLabel(ctx, labels); err != nil {
			return err
		}
		if typeCounts, err = store.CountByRelationshipType(ctx, types); err != nil {
			return err
		}
	}

	key, err := resolveKey(ctx, store)
	if err != nil {
		return err
	}

	fmt.Printf("🔍 Graph schema (%s / %s)\n", cfg.Neo4j.URI, client.Database())
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	fmt.Printf("\n🏷️  Labels (%d):\n", len(labels))
	for _, l := range labels {
		printSchemaEntry(l, labelCounts)
	}

	fmt.Printf("\n🔗 Relationship types (%d):\n", len(types))
	for _, t := range types {
		printSchemaEntry(t, typeCounts)
	}

	fmt.Printf("\n🧭 Entity key: %s (mode %s)\n", key.String(), cfg.Identity.Mode)
	return nil
}

func printSchemaEntry(name string, counts map[string]int64) {
	if counts == nil {
		fmt.Printf("  %s\n", name)
		return
	}
	fmt.Printf("  %-30s %d\n", name, counts[name])
}
