package termview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ziadkadry99/callscope/internal/graph"
)

func sample() *graph.Graph {
	return graph.New(
		[]graph.Node{{ID: "pkg/a/foo"}, {ID: "pkg/a/bar"}, {ID: "pkg/b/baz", Label: "baz"}},
		[]graph.Edge{
			{Source: "pkg/a/foo", Target: "pkg/a/bar"},
			{Source: "pkg/a/foo", Target: "pkg/b/baz"},
			{Source: "pkg/a/bar", Target: "pkg/b/baz"},
		},
	)
}

// A buffer is not a terminal, so output carries no escape codes.
func plain() *View { return New(&bytes.Buffer{}) }

func TestHeatmap(t *testing.T) {
	out := plain().Heatmap(graph.Heatmap(sample(), 2))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Incoming")
	assert.True(t, strings.HasPrefix(lines[1], "pkg/a/foo"))
	assert.Contains(t, lines[1], "       0        2      2")
	assert.NotContains(t, out, "\x1b[")
}

func TestNamespaceTree(t *testing.T) {
	g := sample()
	root := graph.BuildNamespaceTree(g.IDs(), g.Degrees().Totals(), "/")
	out := plain().NamespaceTree(root)

	want := strings.Join([]string{
		"root (6)",
		"└── pkg (6)",
		"    ├── a (4)",
		"    │   ├── foo [2]",
		"    │   └── bar [2]",
		"    └── b (2)",
		"        └── baz [2]",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestCallTree(t *testing.T) {
	g := sample()
	out := plain().CallTree("pkg/a/foo", graph.WalkCallTree(g, "pkg/a/foo", 3))

	want := strings.Join([]string{
		"pkg/a/foo",
		"├── pkg/a/bar",
		"│   └── baz",
		"└── baz",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestDetailsAndSummary(t *testing.T) {
	g := sample()
	d, err := graph.Details(g, "pkg/b/baz", 3)
	assert.NoError(t, err)

	v := plain()
	out := v.Details(d)
	assert.Contains(t, out, "baz\npkg/b/baz\n")
	assert.Contains(t, out, "Incoming calls: 2")
	assert.Contains(t, out, "Called by:\n  pkg/a/foo\n  pkg/a/bar\n")

	assert.Equal(t, "dump.json: 3 functions, 3 calls", v.Summary("dump.json", g.Stats(), 3))
}

func TestRanking(t *testing.T) {
	out := plain().Ranking(graph.TopK(sample().Degrees(), 1))
	assert.Equal(t, "  1. pkg/a/foo (in 0, out 2, total 2)\n", out)
}
