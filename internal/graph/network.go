package graph

import (
	"errors"
	"math"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// ErrNodeNotFound is returned when a requested node id is not in the graph.
var ErrNodeNotFound = errors.New("node not found")

// Radius range for network nodes.
const (
	MinRadius = 2.0
	MaxRadius = 8.0
)

// NetworkNode is a node of the network view, sized and coloured by degree.
type NetworkNode struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Degree   int     `json:"degree"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color"`
	PageRank float64 `json:"pagerank"`
}

// NetworkView is everything the force-directed canvas needs apart from the
// layout itself.
type NetworkView struct {
	Nodes     []NetworkNode `json:"nodes"`
	Edges     []Edge        `json:"edges"`
	MaxDegree int           `json:"max_degree"`
	Stats     Stats         `json:"stats"`
}

// Network builds the network view. Radius uses a square-root scale from
// [1, maxDegree] to [MinRadius, MaxRadius]; colour interpolates Purples over
// [0, maxDegree]. Edges whose endpoints are not in the node list are dropped.
func Network(g *Graph) NetworkView {
	degrees := g.Degrees()
	maxDegree := degrees.MaxTotal()
	ranks := PageRank(g)
	index := g.Index()

	view := NetworkView{
		Nodes:     make([]NetworkNode, 0, len(g.Nodes)),
		Edges:     make([]Edge, 0, len(g.Links)),
		MaxDegree: maxDegree,
		Stats:     g.Stats(),
	}
	upper := maxDegree
	if upper < 1 {
		upper = 1
	}
	for _, n := range g.Nodes {
		deg := degrees.Total(n.ID)
		sized := deg
		if sized == 0 {
			sized = 1
		}
		view.Nodes = append(view.Nodes, NetworkNode{
			ID:       n.ID,
			Label:    n.Label,
			Degree:   deg,
			Radius:   SqrtScale(float64(sized), 1, float64(upper), MinRadius, MaxRadius),
			Color:    Purples.At(Intensity(deg, maxDegree)),
			PageRank: ranks[n.ID],
		})
	}
	for _, e := range g.Links {
		if !e.Valid() {
			continue
		}
		if _, ok := index[e.Source]; !ok {
			continue
		}
		if _, ok := index[e.Target]; !ok {
			continue
		}
		view.Edges = append(view.Edges, e)
	}
	return view
}

// SqrtScale maps x from the domain [d0, d1] to [r0, r1] on a square-root
// scale. A collapsed domain maps every input to the middle of the range.
func SqrtScale(x, d0, d1, r0, r1 float64) float64 {
	s0, s1 := math.Sqrt(math.Max(d0, 0)), math.Sqrt(math.Max(d1, 0))
	if s1 == s0 {
		return (r0 + r1) / 2
	}
	t := (math.Sqrt(math.Max(x, 0)) - s0) / (s1 - s0)
	return r0 + t*(r1-r0)
}

// PageRank scores nodes over the distinct caller/callee pairs. Self calls
// are ignored. Ids only referenced by edges take part in the computation.
func PageRank(g *Graph) map[string]float64 {
	dg := simple.NewDirectedGraph()
	ids := make(map[string]int64)
	names := make(map[int64]string)
	node := func(id string) gonum.Node {
		if n, ok := ids[id]; ok {
			return simple.Node(n)
		}
		n := int64(len(ids))
		ids[id] = n
		names[n] = id
		dg.AddNode(simple.Node(n))
		return simple.Node(n)
	}
	for _, n := range g.Nodes {
		node(n.ID)
	}
	for _, e := range g.Links {
		if !e.Valid() || e.Source == e.Target {
			continue
		}
		from, to := node(e.Source), node(e.Target)
		if dg.HasEdgeFromTo(from.ID(), to.ID()) {
			continue
		}
		dg.SetEdge(dg.NewEdge(from, to))
	}

	out := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return out
	}
	for n, score := range network.PageRank(dg, 0.85, 1e-6) {
		out[names[n]] = score
	}
	return out
}

// NodeDetails is the side panel for a selected node.
type NodeDetails struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Outgoing int            `json:"outgoing"`
	Incoming int            `json:"incoming"`
	Callers  []string       `json:"callers"`
	CallTree []CallTreeNode `json:"call_tree"`
}

// Details collects the selected node's call counts, one caller entry per
// incoming edge, and its call tree. Depths outside [0, MaxCallTreeDepth]
// fail with ErrDepthOutOfRange.
func Details(g *Graph, id string, depth int) (NodeDetails, error) {
	if err := CheckCallTreeDepth(depth); err != nil {
		return NodeDetails{}, err
	}
	n, ok := g.Index()[id]
	if !ok {
		return NodeDetails{}, ErrNodeNotFound
	}
	d := NodeDetails{
		ID:      id,
		Label:   n.DisplayName(),
		Callers: []string{},
	}
	for _, e := range g.Links {
		if !e.Valid() {
			continue
		}
		if e.Source == id {
			d.Outgoing++
		}
		if e.Target == id {
			d.Incoming++
			d.Callers = append(d.Callers, e.Source)
		}
	}
	d.CallTree = WalkCallTree(g, id, depth)
	return d, nil
}
