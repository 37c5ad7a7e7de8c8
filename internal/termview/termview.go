// Package termview renders call graph views for the terminal.
package termview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/callscope/internal/graph"
)

// idWidth caps the id column of tables.
const idWidth = 48

// View renders with the colour profile of its output.
type View struct {
	r      *lipgloss.Renderer
	header lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
}

// New returns a View for w. Colours are dropped when w is not a terminal.
func New(w io.Writer) *View {
	r := lipgloss.NewRenderer(w)
	return &View{
		r:      r,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#6a51a3")),
		muted:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}),
		accent: r.NewStyle().Foreground(lipgloss.Color("#9e9ac8")),
	}
}

// Heatmap draws the heatmap table. Count cells are shaded by intensity.
func (v *View) Heatmap(rows []graph.HeatmapRow) string {
	var sb strings.Builder
	idCol := v.r.NewStyle().Width(idWidth)
	sb.WriteString(v.header.Render(idCol.Render("Function") + fmt.Sprintf(" %8s %8s %6s", "Incoming", "Outgoing", "Total")))
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString(idCol.Render(graph.Truncate(row.ID, idWidth)))
		sb.WriteString(" ")
		sb.WriteString(v.cell(row.Incoming, row.IncomingIntensity))
		sb.WriteString(" ")
		sb.WriteString(v.cell(row.Outgoing, row.OutgoingIntensity))
		sb.WriteString(fmt.Sprintf(" %6d\n", row.Total))
	}
	return sb.String()
}

func (v *View) cell(n int, intensity float64) string {
	fg := lipgloss.Color("#1a1a1a")
	if intensity > 0.5 {
		fg = lipgloss.Color("#ffffff")
	}
	return v.r.NewStyle().
		Background(lipgloss.Color(graph.HeatHex(intensity))).
		Foreground(fg).
		Render(fmt.Sprintf("%8d", n))
}

// Ranking prints ranked nodes with their call counts.
func (v *View) Ranking(ranked []graph.RankedNode) string {
	var sb strings.Builder
	for i, r := range ranked {
		sb.WriteString(v.muted.Render(fmt.Sprintf("%3d.", i+1)))
		sb.WriteString(fmt.Sprintf(" %s %s\n", r.ID,
			v.muted.Render(fmt.Sprintf("(in %d, out %d, total %d)", r.Incoming, r.Outgoing, r.Total))))
	}
	return sb.String()
}

// NamespaceTree prints the namespace hierarchy with leaf weights.
func (v *View) NamespaceTree(root *graph.NamespaceNode) string {
	var sb strings.Builder
	sb.WriteString(v.header.Render(fmt.Sprintf("%s (%d)", root.Name, root.Value())))
	sb.WriteString("\n")
	v.namespace(&sb, root.Children, "")
	return sb.String()
}

func (v *View) namespace(sb *strings.Builder, nodes []*graph.NamespaceNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		sb.WriteString(v.muted.Render(prefix + branch))
		if n.IsLeaf() {
			sb.WriteString(fmt.Sprintf("%s %s\n", n.Name, v.accent.Render(fmt.Sprintf("[%d]", n.Weight))))
			continue
		}
		sb.WriteString(v.header.Render(n.Name))
		sb.WriteString(v.muted.Render(fmt.Sprintf(" (%d)", n.Value())))
		sb.WriteString("\n")
		v.namespace(sb, n.Children, prefix+next)
	}
}

// CallTree prints the calls reachable from rootLabel.
func (v *View) CallTree(rootLabel string, tree []graph.CallTreeNode) string {
	var sb strings.Builder
	sb.WriteString(v.header.Render(rootLabel))
	sb.WriteString("\n")
	v.calls(&sb, tree, "")
	return sb.String()
}

func (v *View) calls(sb *strings.Builder, nodes []graph.CallTreeNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		sb.WriteString(v.muted.Render(prefix + branch))
		sb.WriteString(n.Label)
		sb.WriteString("\n")
		v.calls(sb, n.Children, prefix+next)
	}
}

// Details prints the side panel for one node.
func (v *View) Details(d graph.NodeDetails) string {
	var sb strings.Builder
	sb.WriteString(v.header.Render(d.Label))
	sb.WriteString("\n")
	if d.Label != d.ID {
		sb.WriteString(v.muted.Render(d.ID))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Outgoing calls: %d\n", d.Outgoing))
	sb.WriteString(fmt.Sprintf("Incoming calls: %d\n", d.Incoming))
	if len(d.Callers) > 0 {
		sb.WriteString("Called by:\n")
		for _, c := range d.Callers {
			sb.WriteString("  " + c + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(v.CallTree("Call tree", d.CallTree))
	return sb.String()
}

// Summary is the one-line status for a loaded graph.
func (v *View) Summary(source string, stats graph.Stats, totalCalls int) string {
	return v.muted.Render(fmt.Sprintf("%s: %d functions, %d calls", source, stats.Nodes, totalCalls))
}
