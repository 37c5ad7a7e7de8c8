package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/termview"
)

var topCmd = &cobra.Command{
	Use:   "top <graph.json>",
	Short: "Print the heatmap of the most connected functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		k, _ := cmd.Flags().GetInt("k")
		if k <= 0 {
			k = cfg.Views.HeatmapSize
		}
		rows := graph.Heatmap(g, k)
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "The graph has no functions.")
			return nil
		}
		fmt.Print(termview.New(os.Stdout).Heatmap(rows))
		return nil
	},
}

func init() {
	topCmd.Flags().IntP("k", "k", 0, "number of functions to show (default from config)")
	rootCmd.AddCommand(topCmd)
}
