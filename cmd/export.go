package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/export"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/progress"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a call graph to an external database",
}

var exportNeo4jCmd = &cobra.Command{
	Use:   "neo4j <graph.json>",
	Short: "Load a call graph into Neo4j as Function nodes and CALLS relationships",
	Long: `Loads every function as a (:Function {id}) node and every distinct caller and
callee pair as a [:CALLS {count}] relationship. Connection settings come from the
neo4j section of the config; NEO4J_PASSWORD overrides the configured password.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		if uri, _ := cmd.Flags().GetString("uri"); uri != "" {
			cfg.Neo4j.URI = uri
		}
		clean, _ := cmd.Flags().GetBool("clean")
		delim, _ := cmd.Flags().GetString("delim")

		exp, err := export.NewNeo4jExporter(ctx, export.Neo4jConfig{
			URI:       cfg.Neo4j.URI,
			Username:  cfg.Neo4j.Username,
			Password:  cfg.Neo4jPassword(),
			Database:  cfg.Neo4j.Database,
			BatchSize: cfg.Neo4j.BatchSize,
		})
		if err != nil {
			return err
		}
		defer exp.Close(ctx)

		stats, err := exp.Export(ctx, g, export.Options{
			Delimiter: delim,
			Clean:     clean,
			Reporter:  progress.NewReporter("Exporting"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d functions and %d call relationships to %s\n",
			stats.Functions, stats.Calls, cfg.Neo4j.URI)
		return nil
	},
}

func init() {
	exportNeo4jCmd.Flags().String("uri", "", "bolt URI (overrides config)")
	exportNeo4jCmd.Flags().Bool("clean", false, "delete previously exported functions first")
	exportNeo4jCmd.Flags().String("delim", graph.DefaultDelimiter, "namespace delimiter in function ids")
	exportCmd.AddCommand(exportNeo4jCmd)
	rootCmd.AddCommand(exportCmd)
}
