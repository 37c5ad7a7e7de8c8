package diagrams

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/callscope/internal/graph"
)

func sample() *graph.Graph {
	return graph.New(
		[]graph.Node{{ID: "A", Label: "alpha"}, {ID: "B"}, {ID: "C"}},
		[]graph.Edge{
			{Source: "A", Target: "B"},
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
			{Source: "C", Target: "A"},
		},
	)
}

func TestCallTreeDiagram(t *testing.T) {
	g := sample()
	tree := graph.WalkCallTree(g, "A", graph.DefaultCallTreeDepth)
	got := CallTreeDiagram("A", "alpha", tree)

	want := strings.Join([]string{
		"graph TD",
		`    n0["alpha"]`,
		`    n1["B"]`,
		"    n0 --> n1",
		`    n2["C"]`,
		"    n1 --> n2",
		"    n2 --> n0",
		"",
	}, "\n")
	if got != want {
		t.Errorf("CallTreeDiagram:\n%s\nwant:\n%s", got, want)
	}
}

func TestCallTreeDiagramLeaf(t *testing.T) {
	got := CallTreeDiagram("pkg.Main.run()", "", nil)
	want := "graph TD\n    n0[\"pkg.Main.run#lpar;#rpar;\"]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTopDiagram(t *testing.T) {
	got := TopDiagram(sample(), 2)

	// A and B both have total degree 3, C has 2.
	want := strings.Join([]string{
		"graph LR",
		`    n0["alpha"]`,
		`    n1["B"]`,
		"    n0 -->|2| n1",
		"",
	}, "\n")
	if got != want {
		t.Errorf("TopDiagram:\n%s\nwant:\n%s", got, want)
	}
}

func TestEscapeMermaid(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`say "hello"`, "say #quot;hello#quot;"},
		{"List<String>", "List#lt;String#gt;"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := escapeMermaid(tt.input); got != tt.want {
			t.Errorf("escapeMermaid(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
