package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/termview"
)

var treeCmd = &cobra.Command{
	Use:   "tree <graph.json>",
	Short: "Print the namespace hierarchy weighted by call counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		delim, _ := cmd.Flags().GetString("delim")
		root := graph.BuildNamespaceTree(g.IDs(), g.Degrees().Totals(), delim)
		root.SortByValue()
		fmt.Print(termview.New(os.Stdout).NamespaceTree(root))
		return nil
	},
}

func init() {
	treeCmd.Flags().String("delim", graph.DefaultDelimiter, "namespace delimiter in function ids")
	rootCmd.AddCommand(treeCmd)
}
