package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <graph.json>",
	Short: "Write a markdown or HTML summary of a call graph",
	Long: `Writes a report with the graph's counts, its most connected functions, a
namespace breakdown and the call tree of the top function. The format follows
the --out extension: .html produces a standalone page, anything else markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		top, _ := cmd.Flags().GetInt("top")
		if top <= 0 {
			top = cfg.Views.HeatmapSize
		}
		delim, _ := cmd.Flags().GetString("delim")
		out, _ := cmd.Flags().GetString("out")

		md := report.Markdown(filepath.Base(args[0]), g, report.Options{
			TopK:      top,
			Depth:     cfg.Views.CallTreeDepth,
			Delimiter: delim,
		})
		data := []byte(md)
		if report.IsHTML(out) {
			data, err = report.HTML("Call graph report: "+filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
		}

		if out == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", out)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("out", "o", "", "output file (.md or .html); stdout when empty")
	reportCmd.Flags().Int("top", 0, "number of ranked functions (default from config)")
	reportCmd.Flags().String("delim", graph.DefaultDelimiter, "namespace delimiter in function ids")
	rootCmd.AddCommand(reportCmd)
}
