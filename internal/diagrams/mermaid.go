// Package diagrams renders call graph views as mermaid flowcharts.
package diagrams

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/callscope/internal/graph"
)

// idTable hands out short mermaid node ids in order of first use, so ids
// that differ only in punctuation never collide.
type idTable struct {
	ids   map[string]string
	order []string
}

func newIDTable() *idTable {
	return &idTable{ids: make(map[string]string)}
}

func (t *idTable) get(id string) (string, bool) {
	if m, ok := t.ids[id]; ok {
		return m, false
	}
	m := fmt.Sprintf("n%d", len(t.order))
	t.ids[id] = m
	t.order = append(t.order, id)
	return m, true
}

// CallTreeDiagram renders the call tree below rootID as a top-down graph.
// Each distinct caller/callee pair is drawn once.
func CallTreeDiagram(rootID, rootLabel string, tree []graph.CallTreeNode) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	ids := newIDTable()
	node := func(id, label string) string {
		m, fresh := ids.get(id)
		if fresh {
			if label == "" {
				label = id
			}
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", m, escapeMermaid(label)))
		}
		return m
	}

	drawn := make(map[[2]string]bool)
	var walk func(parent string, children []graph.CallTreeNode)
	walk = func(parent string, children []graph.CallTreeNode) {
		for _, c := range children {
			to := node(c.ID, c.Label)
			if key := [2]string{parent, to}; !drawn[key] {
				drawn[key] = true
				b.WriteString(fmt.Sprintf("    %s --> %s\n", parent, to))
			}
			walk(to, c.Children)
		}
	}
	walk(node(rootID, rootLabel), tree)

	return b.String()
}

// TopDiagram renders the k most connected functions and the calls between
// them as a left-to-right graph. Repeated calls are labelled with their count.
func TopDiagram(g *graph.Graph, k int) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	index := g.Index()
	ranked := graph.TopK(g.Degrees(), k)
	ids := newIDTable()
	for _, r := range ranked {
		m, _ := ids.get(r.ID)
		label := r.ID
		if n, ok := index[r.ID]; ok {
			label = n.DisplayName()
		}
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", m, escapeMermaid(label)))
	}

	pos := make(map[string]int, len(ranked))
	for i, r := range ranked {
		pos[r.ID] = i
	}
	counts := make(map[[2]int]int)
	for _, e := range g.Links {
		from, okF := pos[e.Source]
		to, okT := pos[e.Target]
		if okF && okT {
			counts[[2]int{from, to}]++
		}
	}
	pairs := make([][2]int, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, p := range pairs {
		from, to := ids.ids[ranked[p[0]].ID], ids.ids[ranked[p[1]].ID]
		if n := counts[p]; n > 1 {
			b.WriteString(fmt.Sprintf("    %s -->|%d| %s\n", from, n, to))
		} else {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
		}
	}

	return b.String()
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	return mermaidEscaper.Replace(s)
}

var mermaidEscaper = strings.NewReplacer(
	"\"", "#quot;",
	"(", "#lpar;",
	")", "#rpar;",
	"[", "#lsqb;",
	"]", "#rsqb;",
	"{", "#lbrace;",
	"}", "#rbrace;",
	"<", "#lt;",
	">", "#gt;",
)
