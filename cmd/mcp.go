package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/blacklist"
	mcpserver "github.com/ziadkadry99/callscope/internal/mcp"
	"github.com/ziadkadry99/callscope/internal/snapshots"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing call graph tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts, err := analysisOptions(cfg, "")
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		analysis := &analyzer.Service{
			Blacklist: blacklist.NewStore(database),
			Snapshots: snapshots.NewStore(database),
			Options:   opts,
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "callscope MCP server started on stdio (db=%s)\n", database.Path())

		srv := mcpserver.NewServer(analysis, viewLimits(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
