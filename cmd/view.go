package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/state"
)

var viewCmd = &cobra.Command{
	Use:   "view <graph.json>",
	Short: "Print the model behind one interactive view as JSON",
	Long: `Loads a graph, applies the filter, selection and threshold the same way the
explorer does, and prints the resulting view model as JSON. The selected node's
details are included when --select is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	names := make([]string, len(state.Views))
	for i, v := range state.Views {
		names[i] = string(v)
	}
	viewCmd.Flags().String("view", string(state.ViewNetwork), "view to render: "+strings.Join(names, ", "))
	viewCmd.Flags().String("filter", "", "only keep nodes whose id or label contains this text")
	viewCmd.Flags().String("select", "", "node id to select")
	viewCmd.Flags().Int("threshold", graph.DefaultChordThreshold, "ranked relationship view size (25, 50 or 100)")
	viewCmd.Flags().String("delim", graph.DefaultDelimiter, "namespace delimiter for treemap and bundle")
	rootCmd.AddCommand(viewCmd)
}

type viewOutput struct {
	View     state.View         `json:"view"`
	Source   string             `json:"source"`
	Model    any                `json:"model"`
	Nodes    []graph.Node       `json:"nodes,omitempty"`
	Selected *graph.NodeDetails `json:"selected,omitempty"`
	Degrees  *graph.DegreeMap   `json:"degrees"`
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	viewName, _ := cmd.Flags().GetString("view")
	filter, _ := cmd.Flags().GetString("filter")
	selected, _ := cmd.Flags().GetString("select")
	threshold, _ := cmd.Flags().GetInt("threshold")
	delim, _ := cmd.Flags().GetString("delim")

	if !state.View(viewName).Valid() {
		return fmt.Errorf("unknown view %q", viewName)
	}
	if !graph.ValidThreshold(threshold) {
		return fmt.Errorf("threshold must be one of %v", graph.ChordThresholds)
	}

	events := []state.Event{
		state.GraphLoaded{Graph: g, Source: args[0], Delimiter: delim},
		state.ViewChanged{View: state.View(viewName)},
		state.FilterChanged{Text: filter},
		state.ThresholdChanged{K: threshold},
	}
	if selected != "" {
		events = append(events, state.NodeClicked{ID: selected})
	}
	st := state.Replay(state.New(), events...)

	out := viewOutput{
		View:    st.View,
		Source:  st.Source,
		Model:   viewModel(st, cfg.Views.HeatmapSize),
		Degrees: st.Degrees,
	}
	if st.Filter != "" {
		out.Nodes = st.VisibleNodes()
	}
	if selected != "" {
		d, ok := st.SelectedDetails(cfg.Views.CallTreeDepth)
		if !ok {
			return fmt.Errorf("node %q not found", selected)
		}
		out.Selected = &d
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// viewModel builds the model for the active view.
func viewModel(st state.State, heatmapSize int) any {
	switch st.View {
	case state.ViewChord:
		return graph.Chord(st.Graph)
	case state.ViewTopChord:
		return graph.TopChord(st.Graph, st.Threshold)
	case state.ViewTreemap:
		return graph.Treemap(st.Graph, st.Delimiter)
	case state.ViewBundle:
		return graph.Bundle(st.Graph, st.Delimiter)
	case state.ViewHeatmap:
		return graph.Heatmap(st.Graph, heatmapSize)
	default:
		return graph.Network(st.Graph)
	}
}
