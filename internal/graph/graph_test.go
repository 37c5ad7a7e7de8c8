package graph

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	return New(
		[]Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]Edge{{Source: "A", Target: "B"}, {Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	)
}

func TestCountDegrees_RepeatedEdges(t *testing.T) {
	m := sampleGraph().Degrees()

	a, _ := m.Get("A")
	b, _ := m.Get("B")
	c, _ := m.Get("C")
	assert.Equal(t, Degree{Incoming: 0, Outgoing: 2}, a)
	assert.Equal(t, Degree{Incoming: 2, Outgoing: 1}, b)
	assert.Equal(t, Degree{Incoming: 1, Outgoing: 0}, c)
	assert.Equal(t, 3, m.TotalCalls())
	assert.Equal(t, 3, m.MaxTotal())
}

func TestCountDegrees_UnknownEndpointsAndInvalidEdges(t *testing.T) {
	m := CountDegrees(
		[]Node{{ID: "A"}},
		[]Edge{{Source: "A", Target: "X"}, {Source: "", Target: "A"}, {Source: "A"}},
	)
	assert.Equal(t, []string{"A", "X"}, m.IDs())
	x, ok := m.Get("X")
	require.True(t, ok)
	assert.Equal(t, 1, x.Incoming)
	assert.Equal(t, 1, m.TotalCalls())
}

func TestCountDegrees_Empty(t *testing.T) {
	m := CountDegrees(nil, nil)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.MaxTotal())
	assert.Empty(t, TopK(m, 5))
}

func TestDegreeMap_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(sampleGraph().Degrees())
	require.NoError(t, err)

	var got map[string]Degree
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Degree{Incoming: 2, Outgoing: 1}, got["B"])
}

func TestTopK(t *testing.T) {
	ranked := TopK(sampleGraph().Degrees(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].ID)
	assert.Equal(t, 3, ranked[0].Total)
	assert.Equal(t, "A", ranked[1].ID)

	assert.Len(t, TopK(sampleGraph().Degrees(), 0), 3)
	assert.Len(t, TopK(sampleGraph().Degrees(), 10), 3)
}

func TestTopK_TiesKeepInsertionOrder(t *testing.T) {
	g := New([]Node{{ID: "z"}, {ID: "y"}, {ID: "x"}}, []Edge{{Source: "z", Target: "y"}, {Source: "x", Target: "x"}})
	ranked := TopK(g.Degrees(), 0)
	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	assert.Equal(t, []string{"x", "z", "y"}, ids)
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0.0, Intensity(3, 0))
	assert.Equal(t, 0.0, Intensity(0, 4))
	assert.Equal(t, 0.5, Intensity(2, 4))
	assert.Equal(t, 1.0, Intensity(9, 4))
}

func TestValidThreshold(t *testing.T) {
	for _, k := range []int{25, 50, 100} {
		assert.True(t, ValidThreshold(k), k)
	}
	assert.False(t, ValidThreshold(30))
}

func TestEdgeUnmarshal_ObjectEndpoints(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"nodes":[{"id":"a"},{"id":"b"}],"links":[{"source":{"id":"a","x":1},"target":"b"},{"source":7,"target":null}]}`), &g)
	require.NoError(t, err)
	require.Len(t, g.Links, 2)
	assert.Equal(t, Edge{Source: "a", Target: "b"}, g.Links[0])
	assert.Equal(t, "7", g.Links[1].Source)
	assert.False(t, g.Links[1].Valid())
}

func TestNodeUnmarshal_NumericIDsMatchEdges(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"nodes":[{"id":1,"label":"one"},{"id":"2"}],"links":[{"source":1,"target":2},{"source":"1","target":{"id":2}}]}`), &g)
	require.NoError(t, err)
	assert.Equal(t, []Node{{ID: "1", Label: "one"}, {ID: "2"}}, g.Nodes)

	d, err := Details(&g, "2", DefaultCallTreeDepth)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Incoming)
	assert.Equal(t, []string{"1", "1"}, d.Callers)
}

func TestNamespaceTree(t *testing.T) {
	ids := []string{"pkg/a/foo", "pkg/a/bar", "pkg/b/baz"}
	root := BuildNamespaceTree(ids, map[string]int{"pkg/a/foo": 4}, "")

	assert.Equal(t, RootName, root.Name)
	require.Len(t, root.Children, 1)
	pkg := root.Children[0]
	assert.Equal(t, "pkg", pkg.Name)
	require.Len(t, pkg.Children, 2)
	assert.Equal(t, "a", pkg.Children[0].Name)
	assert.Equal(t, "b", pkg.Children[1].Name)

	foo, ok := root.Lookup("pkg/a/foo", "/")
	require.True(t, ok)
	assert.Equal(t, 4, foo.Weight)
	bar, ok := root.Lookup("pkg/a/bar", "/")
	require.True(t, ok)
	assert.Equal(t, 1, bar.Weight)

	_, ok = root.Lookup("pkg/c/nope", "/")
	assert.False(t, ok)
	assert.Equal(t, 6, root.Value())
	assert.Len(t, root.Leaves(), 3)
}

func TestNamespaceTree_NoDelimiter(t *testing.T) {
	root := BuildNamespaceTree([]string{"main"}, nil, "/")
	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].IsLeaf())
	assert.Equal(t, "main", root.Children[0].Name)
}

func TestNamespaceTree_SortByValue(t *testing.T) {
	root := BuildNamespaceTree([]string{"x/small", "y/big"}, map[string]int{"y/big": 10}, "/")
	root.SortByValue()
	assert.Equal(t, "y", root.Children[0].Name)
}

func TestWalkCallTree(t *testing.T) {
	g := New(
		[]Node{{ID: "A", Label: "Alpha"}, {ID: "B"}, {ID: "C"}},
		[]Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}, {Source: "C", Target: "A"}, {Source: "B", Target: "Z"}},
	)
	tree := WalkCallTree(g, "A", 3)
	require.Len(t, tree, 1)
	assert.Equal(t, "B", tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	c := tree[0].Children[0]
	assert.Equal(t, "C", c.ID)
	require.Len(t, c.Children, 1)
	// A is on the path, so it is listed but not expanded.
	assert.Equal(t, "Alpha", c.Children[0].Label)
	assert.Empty(t, c.Children[0].Children)
	assert.Equal(t, "Z", tree[0].Children[1].Label)
}

func TestWalkCallTree_DepthBound(t *testing.T) {
	var nodes []Node
	var edges []Edge
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		nodes = append(nodes, Node{ID: id})
		if i > 0 {
			edges = append(edges, Edge{Source: string(rune('a' + i - 1)), Target: id})
		}
	}
	tree := WalkCallTree(New(nodes, edges), "a", 2)
	assert.Equal(t, 3, treeDepth(tree))

	assert.Empty(t, WalkCallTree(New(nodes, edges), "j", 3))
	assert.Empty(t, WalkCallTree(New(nodes, edges), "missing", 3))
}

func TestWalkCallTree_ClampsToMaxDepth(t *testing.T) {
	var nodes []Node
	var edges []Edge
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		nodes = append(nodes, Node{ID: id})
		if i > 0 {
			edges = append(edges, Edge{Source: string(rune('a' + i - 1)), Target: id})
		}
	}
	g := New(nodes, edges)
	assert.Equal(t, MaxCallTreeDepth+1, treeDepth(WalkCallTree(g, "a", 100)))
	assert.Equal(t, DefaultCallTreeDepth+1, treeDepth(WalkCallTree(g, "a", -1)))

	_, err := Details(g, "a", MaxCallTreeDepth+1)
	assert.ErrorIs(t, err, ErrDepthOutOfRange)
	_, err = Details(g, "a", -1)
	assert.ErrorIs(t, err, ErrDepthOutOfRange)
	_, err = Details(g, "a", MaxCallTreeDepth)
	assert.NoError(t, err)
}

func TestWalkCallTree_CompleteGraphStaysBounded(t *testing.T) {
	var nodes []Node
	var edges []Edge
	for i := 0; i < 7; i++ {
		nodes = append(nodes, Node{ID: string(rune('a' + i))})
		for j := 0; j < 7; j++ {
			if i != j {
				edges = append(edges, Edge{Source: string(rune('a' + i)), Target: string(rune('a' + j))})
			}
		}
	}
	g := New(nodes, edges)
	assert.Equal(t, countTree(WalkCallTree(g, "a", MaxCallTreeDepth)), countTree(WalkCallTree(g, "a", 100)))
}

func TestWalkCallTree_DiamondExpandsUnderEachBranch(t *testing.T) {
	g := New(
		[]Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "E"}},
		[]Edge{{Source: "A", Target: "B"}, {Source: "A", Target: "C"}, {Source: "B", Target: "D"}, {Source: "C", Target: "D"}, {Source: "D", Target: "E"}},
	)
	tree := WalkCallTree(g, "A", DefaultCallTreeDepth)
	require.Len(t, tree, 2)
	for _, branch := range tree {
		require.Len(t, branch.Children, 1, branch.ID)
		d := branch.Children[0]
		assert.Equal(t, "D", d.ID)
		// D is reached again through a sibling but still expanded.
		require.Len(t, d.Children, 1)
		assert.Equal(t, "E", d.Children[0].ID)
	}
}

func countTree(nodes []CallTreeNode) int {
	n := len(nodes)
	for _, c := range nodes {
		n += countTree(c.Children)
	}
	return n
}

func treeDepth(nodes []CallTreeNode) int {
	best := 0
	for _, n := range nodes {
		if d := 1 + treeDepth(n.Children); d > best {
			best = d
		}
	}
	return best
}

func TestDetails(t *testing.T) {
	d, err := Details(sampleGraph(), "B", DefaultCallTreeDepth)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Incoming)
	assert.Equal(t, 1, d.Outgoing)
	assert.Equal(t, []string{"A", "A"}, d.Callers)
	require.Len(t, d.CallTree, 1)
	assert.Equal(t, "C", d.CallTree[0].ID)

	_, err = Details(sampleGraph(), "nope", 3)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNetwork(t *testing.T) {
	g := sampleGraph()
	g.Links = append(g.Links, Edge{Source: "A", Target: "ghost"})
	view := Network(g)

	assert.Equal(t, 3, view.MaxDegree)
	require.Len(t, view.Nodes, 3)
	assert.Len(t, view.Edges, 3)
	for _, n := range view.Nodes {
		assert.GreaterOrEqual(t, n.Radius, MinRadius)
		assert.LessOrEqual(t, n.Radius, MaxRadius)
		assert.True(t, strings.HasPrefix(n.Color, "#"))
	}
	assert.InDelta(t, MaxRadius, view.Nodes[0].Radius, 1e-9)
}

func TestNetwork_DegenerateDomain(t *testing.T) {
	view := Network(New([]Node{{ID: "solo"}}, nil))
	require.Len(t, view.Nodes, 1)
	assert.InDelta(t, (MinRadius+MaxRadius)/2, view.Nodes[0].Radius, 1e-9)
	assert.Equal(t, Purples.At(0), view.Nodes[0].Color)
}

func TestPageRank(t *testing.T) {
	ranks := PageRank(sampleGraph())
	require.Len(t, ranks, 3)
	assert.Greater(t, ranks["C"], ranks["A"])
	assert.Empty(t, PageRank(New(nil, nil)))
}

func TestPalette(t *testing.T) {
	assert.Equal(t, "#fcfbfd", Purples.At(0))
	assert.Equal(t, "#3f007d", Purples.At(1))
	assert.Equal(t, "#08306b", Blues.At(2))
	assert.Equal(t, "rgb(233, 216, 253)", HeatColor(0))
	assert.Equal(t, "rgb(0, 0, 0)", HeatColor(1))
	assert.Equal(t, "#000000", HeatHex(1))
}

func TestChord(t *testing.T) {
	g := sampleGraph()
	g.Links = append(g.Links, Edge{Source: "C", Target: "ghost"})
	view := Chord(g)

	require.Len(t, view.Groups, 3)
	assert.Equal(t, [][]int{{0, 2, 0}, {0, 0, 1}, {0, 0, 0}}, view.Matrix)
	assert.Equal(t, 2, view.Groups[0].Value)
	assert.InDelta(t, 2.0/3.0, view.Groups[0].Intensity, 1e-9)
}

func TestTopChord(t *testing.T) {
	long := strings.Repeat("x", 40)
	g := New(
		[]Node{{ID: "A"}, {ID: long}, {ID: "C"}, {ID: "lonely"}},
		[]Edge{{Source: "A", Target: long}, {Source: long, Target: "C"}, {Source: long, Target: "A"}},
	)
	view := TopChord(g, 2)
	assert.Equal(t, 2, view.Threshold)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "A", view.Groups[0].ID)
	assert.Equal(t, long, view.Groups[1].ID)
	assert.Equal(t, strings.Repeat("x", 27)+"...", view.Groups[1].Label)
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, view.Matrix)
}

func TestTreemap(t *testing.T) {
	g := New(
		[]Node{{ID: "pkg/a/foo"}, {ID: "pkg/a/bar"}, {ID: "pkg/b/averyveryverylongname"}},
		[]Edge{{Source: "pkg/a/foo", Target: "pkg/a/bar"}, {Source: "pkg/a/foo", Target: "pkg/a/bar"}},
	)
	view := Treemap(g, "/")
	assert.Equal(t, 5, view.Total)
	require.Len(t, view.Leaves, 3)
	assert.Equal(t, "root/pkg/a/foo", view.Leaves[0].Path)
	assert.InDelta(t, 0.4, view.Leaves[0].Intensity, 1e-9)
	assert.Equal(t, "averyveryverylong...", view.Leaves[2].Label)
}

func TestBundle(t *testing.T) {
	g := New(
		[]Node{{ID: "pkg/a/foo"}, {ID: "pkg/b/bar"}},
		[]Edge{{Source: "pkg/a/foo", Target: "other/bar"}, {Source: "pkg/a/foo", Target: "nowhere/zzz"}},
	)
	view := Bundle(g, "")
	leaf, ok := view.Root.Lookup("pkg/a/foo", "/")
	require.True(t, ok)
	assert.Equal(t, []string{"other/bar", "nowhere/zzz"}, leaf.Imports)
	assert.Equal(t, 1, leaf.Weight)
	assert.Equal(t, []BundleLink{{Source: "pkg/a/foo", Target: "pkg/b/bar"}}, view.Links)
}

func TestHeatmap(t *testing.T) {
	rows := Heatmap(sampleGraph(), 0)
	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[0].ID)
	assert.Equal(t, 1.0, rows[0].IncomingIntensity)
	assert.Equal(t, 0.5, rows[0].OutgoingIntensity)
	assert.Equal(t, 1.0, rows[1].OutgoingIntensity)
	assert.Equal(t, "rgb(0, 0, 0)", rows[0].IncomingColor)
}

func TestFilter(t *testing.T) {
	g := New([]Node{{ID: "pkg/Foo"}, {ID: "x", Label: "FooLabel"}, {ID: "bar"}}, nil)
	assert.Len(t, Filter(g, "foo"), 2)
	assert.Len(t, Filter(g, ""), 3)
	assert.Empty(t, Filter(g, "zzz"))
}
