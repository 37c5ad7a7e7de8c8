package graph

import (
	"strings"
)

// Label truncation used by the relationship and treemap views.
const (
	chordLabelMax   = 30
	treemapLabelMax = 20
)

// ChordGroup is one arc of a chord diagram.
type ChordGroup struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Value     int     `json:"value"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
}

// ChordView is an adjacency matrix plus per-row arc data. Matrix[i][j]
// counts calls from Groups[i] to Groups[j].
type ChordView struct {
	Groups      []ChordGroup `json:"groups"`
	Matrix      [][]int      `json:"matrix"`
	RibbonColor string       `json:"ribbon_color"`
	Threshold   int          `json:"threshold,omitempty"`
}

// Chord builds the full relationship matrix over every node, in node order.
// Arc intensity is the row sum divided by the node count.
func Chord(g *Graph) ChordView {
	return buildChord(g.Nodes, g.Links, Purples, 0.7, 0)
}

// TopChord restricts the matrix to the k most connected ids (k defaults to
// DefaultChordThreshold). Ranking counts edge endpoints; only ranked ids that
// are also in the node list are kept, in node order. Labels are truncated.
func TopChord(g *Graph, k int) ChordView {
	if k <= 0 {
		k = DefaultChordThreshold
	}
	degrees := CountDegrees(nil, g.Links)
	top := make(map[string]struct{}, k)
	for _, r := range TopK(degrees, k) {
		top[r.ID] = struct{}{}
	}

	var kept []Node
	seen := make(map[string]struct{})
	for _, n := range g.Nodes {
		if _, ok := top[n.ID]; !ok {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		kept = append(kept, n)
	}
	view := buildChord(kept, g.Links, Blues, 0.8, chordLabelMax)
	view.Threshold = k
	return view
}

func buildChord(nodes []Node, links []Edge, palette Palette, ribbon float64, labelMax int) ChordView {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, ok := index[n.ID]; !ok {
			index[n.ID] = i
		}
	}
	matrix := make([][]int, len(nodes))
	for i := range matrix {
		matrix[i] = make([]int, len(nodes))
	}
	for _, e := range links {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT {
			continue
		}
		matrix[s][t]++
	}

	view := ChordView{
		Groups:      make([]ChordGroup, len(nodes)),
		Matrix:      matrix,
		RibbonColor: palette.At(ribbon),
	}
	for i, n := range nodes {
		value := 0
		for _, c := range matrix[i] {
			value += c
		}
		intensity := 0.0
		if len(nodes) > 0 {
			intensity = float64(value) / float64(len(nodes))
		}
		if intensity > 1 {
			intensity = 1
		}
		label := n.ID
		if labelMax > 0 {
			label = Truncate(label, labelMax)
		}
		view.Groups[i] = ChordGroup{
			ID:        n.ID,
			Label:     label,
			Value:     value,
			Intensity: intensity,
			Color:     palette.At(intensity),
		}
	}
	return view
}

// Truncate shortens s to limit runes, ending with "..." when cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// TreemapLeaf is a rendered treemap cell.
type TreemapLeaf struct {
	ID        string  `json:"id"`
	Path      string  `json:"path"`
	Label     string  `json:"label"`
	Value     int     `json:"value"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
}

// TreemapView carries the weighted tree for the external layout and the
// flattened leaf cells with their fill colours.
type TreemapView struct {
	Root   *NamespaceNode `json:"root"`
	Total  int            `json:"total"`
	Leaves []TreemapLeaf  `json:"leaves"`
}

// Treemap weights each function by its call count and orders siblings by
// descending value. Leaf intensity is the leaf value over the root value.
func Treemap(g *Graph, delim string) TreemapView {
	root := BuildNamespaceTree(g.IDs(), g.Degrees().Totals(), delim)
	root.SortByValue()
	total := root.Value()

	view := TreemapView{Root: root, Total: total}
	root.Walk(func(n *NamespaceNode, path []string) {
		if !n.IsLeaf() {
			return
		}
		intensity := Intensity(n.Weight, total)
		view.Leaves = append(view.Leaves, TreemapLeaf{
			ID:        n.ID,
			Path:      strings.Join(append(append([]string{RootName}, path...), n.Name), "/"),
			Label:     Truncate(n.Name, treemapLabelMax),
			Value:     n.Weight,
			Intensity: intensity,
			Color:     Purples.At(intensity),
		})
	})
	return view
}

// BundleLink connects two leaves of the bundle tree.
type BundleLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// BundleView is the radial hierarchy: a namespace tree whose leaves list
// the ids they call, plus the resolved leaf-to-leaf links.
type BundleView struct {
	Root  *NamespaceNode `json:"root"`
	Links []BundleLink   `json:"links"`
}

// Bundle builds the hierarchical edge bundling view. Every leaf has size 1.
// Call targets resolve to leaves by their final path segment; when several
// leaves share that name the last one wins.
func Bundle(g *Graph, delim string) BundleView {
	if delim == "" {
		delim = DefaultDelimiter
	}
	imports := make(map[string][]string)
	index := g.Index()
	for _, e := range g.Links {
		if !e.Valid() {
			continue
		}
		if _, ok := index[e.Source]; !ok {
			continue
		}
		imports[e.Source] = append(imports[e.Source], e.Target)
	}

	root := BuildNamespaceTree(g.IDs(), nil, delim)
	byName := make(map[string]*NamespaceNode)
	leaves := root.Leaves()
	for _, leaf := range leaves {
		leaf.Imports = imports[leaf.ID]
		byName[leaf.Name] = leaf
	}

	view := BundleView{Root: root, Links: []BundleLink{}}
	for _, leaf := range leaves {
		for _, target := range leaf.Imports {
			parts := strings.Split(target, delim)
			dest, ok := byName[parts[len(parts)-1]]
			if !ok {
				continue
			}
			view.Links = append(view.Links, BundleLink{Source: leaf.ID, Target: dest.ID})
		}
	}
	return view
}

// HeatmapRow is one line of the heatmap table.
type HeatmapRow struct {
	ID                string  `json:"id"`
	Incoming          int     `json:"incoming"`
	Outgoing          int     `json:"outgoing"`
	Total             int     `json:"total"`
	IncomingIntensity float64 `json:"incoming_intensity"`
	OutgoingIntensity float64 `json:"outgoing_intensity"`
	IncomingColor     string  `json:"incoming_color"`
	OutgoingColor     string  `json:"outgoing_color"`
}

// Heatmap lists the top k nodes (HeatmapSize when k <= 0). Incoming and
// outgoing cells are scaled independently against their own column maximum.
func Heatmap(g *Graph, k int) []HeatmapRow {
	if k <= 0 {
		k = HeatmapSize
	}
	return HeatmapRows(TopK(g.Degrees(), k))
}

// HeatmapRows colours an already ranked selection, scaling each column
// against its maximum over the given rows only.
func HeatmapRows(ranked []RankedNode) []HeatmapRow {
	maxIn, maxOut := 0, 0
	for _, r := range ranked {
		if r.Incoming > maxIn {
			maxIn = r.Incoming
		}
		if r.Outgoing > maxOut {
			maxOut = r.Outgoing
		}
	}
	rows := make([]HeatmapRow, len(ranked))
	for i, r := range ranked {
		in, out := Intensity(r.Incoming, maxIn), Intensity(r.Outgoing, maxOut)
		rows[i] = HeatmapRow{
			ID:                r.ID,
			Incoming:          r.Incoming,
			Outgoing:          r.Outgoing,
			Total:             r.Total,
			IncomingIntensity: in,
			OutgoingIntensity: out,
			IncomingColor:     HeatColor(in),
			OutgoingColor:     HeatColor(out),
		}
	}
	return rows
}

// Filter returns nodes whose id or label contains text, case-insensitively.
// Empty text matches everything.
func Filter(g *Graph, text string) []Node {
	needle := strings.ToLower(text)
	out := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if strings.Contains(strings.ToLower(n.ID), needle) ||
			(n.Label != "" && strings.Contains(strings.ToLower(n.Label), needle)) {
			out = append(out, n)
		}
	}
	return out
}
