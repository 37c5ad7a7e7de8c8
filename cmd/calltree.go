package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/diagrams"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/termview"
)

var calltreeCmd = &cobra.Command{
	Use:   "calltree <graph.json> [node]",
	Short: "Print the calls reachable from a function",
	Long: `Prints the call tree below a function. When no node id is given, pick one
interactively from the functions ranked by total calls.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		var id string
		if len(args) == 2 {
			id = args[1]
		} else {
			id, err = pickNode(g)
			if err != nil {
				return err
			}
		}

		depth, _ := cmd.Flags().GetInt("depth")
		if depth <= 0 {
			depth = cfg.Views.CallTreeDepth
		}
		d, err := graph.Details(g, id, depth)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}

		if asMermaid, _ := cmd.Flags().GetBool("mermaid"); asMermaid {
			fmt.Print(diagrams.CallTreeDiagram(d.ID, d.Label, d.CallTree))
			return nil
		}
		fmt.Print(termview.New(os.Stdout).Details(d))
		return nil
	},
}

// pickNode asks the user to choose a function, most connected first.
func pickNode(g *graph.Graph) (string, error) {
	items := pickItems(g)
	if len(items) == 0 {
		return "", fmt.Errorf("the graph has no functions")
	}

	prompt := promptui.Select{
		Label: "Function",
		Items: items,
		Size:  15,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
	}
	_, id, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selecting function: %w", err)
	}
	return id, nil
}

// pickItems ranks the declared nodes by total calls. Ids that only appear as
// edge endpoints have no details and are left out.
func pickItems(g *graph.Graph) []string {
	index := g.Index()
	var items []string
	for _, r := range graph.TopK(g.Degrees(), 0) {
		if _, ok := index[r.ID]; ok {
			items = append(items, r.ID)
		}
	}
	return items
}

func init() {
	calltreeCmd.Flags().Int("depth", 0, "maximum call depth (default from config)")
	calltreeCmd.Flags().Bool("mermaid", false, "print a mermaid flowchart instead of a text tree")
	rootCmd.AddCommand(calltreeCmd)
}
