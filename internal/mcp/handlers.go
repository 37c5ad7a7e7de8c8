package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/callscope/internal/diagrams"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/ingest"
	"github.com/ziadkadry99/callscope/internal/state"
	"github.com/ziadkadry99/callscope/internal/termview"
)

const noGraphMessage = "No graph loaded. Call load_graph or analyze_path first."

// plainView renders without colour; tool output is consumed as text.
func plainView() *termview.View { return termview.New(&bytes.Buffer{}) }

// handleLoadGraph reads a graph document from disk.
func (s *Server) handleLoadGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil || strings.TrimSpace(path) == "" {
		st := s.apply(state.ValidationFailed{Message: state.MsgEnterPath})
		return mcp.NewToolResultError(st.Banner), nil
	}

	s.apply(state.LoadStarted{})
	g, err := ingest.LoadFile(path)
	if err != nil {
		st := s.apply(state.LoadFailed{Context: "Error loading file", Err: err})
		return mcp.NewToolResultError(st.Banner), nil
	}
	st := s.apply(state.GraphLoaded{Graph: g, Source: path})
	return mcp.NewToolResultText(s.summary(st)), nil
}

// handleAnalyzePath runs source analysis and loads the resulting graph.
func (s *Server) handleAnalyzePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil || strings.TrimSpace(path) == "" {
		st := s.apply(state.ValidationFailed{Message: state.MsgEnterPath})
		return mcp.NewToolResultError(st.Banner), nil
	}
	if s.analysis == nil {
		return mcp.NewToolResultError("analysis is not available in this session"), nil
	}

	s.apply(state.LoadStarted{})
	res, snap, err := s.analysis.Run(ctx, path)
	if err != nil {
		st := s.apply(state.LoadFailed{Context: "Error analyzing path", Err: err})
		return mcp.NewToolResultError(st.Banner), nil
	}
	st := s.apply(state.GraphLoaded{Graph: res.Graph(), Source: path, Delimiter: res.Delimiter})

	text := s.summary(st)
	if snap != nil {
		text += fmt.Sprintf("\nSnapshot: %s", snap.ID)
	}
	return mcp.NewToolResultText(text), nil
}

// handleTopFunctions returns the heatmap table for the current graph.
func (s *Server) handleTopFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.snapshot()
	if !st.HasGraph() {
		return mcp.NewToolResultError(noGraphMessage), nil
	}

	k := request.GetInt("k", s.limits.HeatmapSize)
	if k <= 0 {
		k = s.limits.HeatmapSize
	}
	if filter := request.GetString("filter", ""); filter != st.Filter {
		st = s.apply(state.FilterChanged{Text: filter})
	}

	rows := graph.Heatmap(st.Graph, k)
	if st.Filter != "" {
		rows = graph.HeatmapRows(filterRanked(graph.TopK(st.Degrees, 0), st.VisibleNodes(), k))
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("No functions match."), nil
	}
	return mcp.NewToolResultText(plainView().Heatmap(rows)), nil
}

// filterRanked keeps the first k ranked nodes that pass the filter.
func filterRanked(ranked []graph.RankedNode, visible []graph.Node, k int) []graph.RankedNode {
	keep := make(map[string]struct{}, len(visible))
	for _, n := range visible {
		keep[n.ID] = struct{}{}
	}
	out := make([]graph.RankedNode, 0, k)
	for _, r := range ranked {
		if _, ok := keep[r.ID]; !ok {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out
}

// handleNodeDetails selects a node and returns its details panel.
func (s *Server) handleNodeDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: node"), nil
	}
	st := s.snapshot()
	if !st.HasGraph() {
		return mcp.NewToolResultError(noGraphMessage), nil
	}
	if _, ok := st.Graph.Index()[id]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("node %q not found", id)), nil
	}
	depth := request.GetInt("depth", s.limits.CallTreeDepth)
	if err := graph.CheckCallTreeDepth(depth); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if st.Selected != id {
		st = s.apply(state.NodeClicked{ID: id})
	}

	d, ok := st.SelectedDetails(depth)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("node %q not found", id)), nil
	}
	return mcp.NewToolResultText(plainView().Details(d)), nil
}

// handleNamespaceTree prints the package hierarchy weighted by call counts.
func (s *Server) handleNamespaceTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.snapshot()
	if !st.HasGraph() {
		return mcp.NewToolResultError(noGraphMessage), nil
	}
	delim := request.GetString("delimiter", st.Delimiter)
	root := graph.BuildNamespaceTree(st.Graph.IDs(), st.Degrees.Totals(), delim)
	root.SortByValue()
	return mcp.NewToolResultText(plainView().NamespaceTree(root)), nil
}

// handleCallTreeDiagram renders a mermaid call tree for a node, the current
// selection, or the top functions when neither is set.
func (s *Server) handleCallTreeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.snapshot()
	if !st.HasGraph() {
		return mcp.NewToolResultError(noGraphMessage), nil
	}
	id := request.GetString("node", st.Selected)
	if id == "" {
		return mcp.NewToolResultText(diagrams.TopDiagram(st.Graph, s.limits.HeatmapSize)), nil
	}

	depth := request.GetInt("depth", s.limits.CallTreeDepth)
	if err := graph.CheckCallTreeDepth(depth); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := graph.Details(st.Graph, id, depth)
	if errors.Is(err, graph.ErrNodeNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("node %q not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(diagrams.CallTreeDiagram(d.ID, d.Label, d.CallTree)), nil
}

func (s *Server) summary(st state.State) string {
	text := plainView().Summary(st.Source, st.Graph.Stats(), st.TotalCalls())
	top := graph.TopK(st.Degrees, 5)
	if len(top) == 0 {
		return text
	}
	return text + "\n\nMost connected:\n" + plainView().Ranking(top)
}
