package graph

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Node is a single function in the call graph. ID is expected to be unique
// within a graph snapshot; Label is an optional display name.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// UnmarshalJSON reads the id the same way edge endpoints are read, so a
// numeric id matches numeric edge references.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    NodeRef `json:"id"`
		Label string  `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID = string(raw.ID)
	n.Label = raw.Label
	return nil
}

// DisplayName returns the label, falling back to the raw id.
func (n Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is one observed call from Source to Target. The same pair may appear
// more than once; each occurrence is a separate call site.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Valid reports whether both endpoints are present.
func (e Edge) Valid() bool {
	return e.Source != "" && e.Target != ""
}

// UnmarshalJSON accepts endpoints given either as a raw id or as an object
// carrying an "id" field, so consumers never see the difference.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source NodeRef `json:"source"`
		Target NodeRef `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Source = string(raw.Source)
	e.Target = string(raw.Target)
	return nil
}

// NodeRef is an edge endpoint normalized to a plain node id.
type NodeRef string

// UnmarshalJSON decodes "id", {"id": "..."} or a bare number.
func (r *NodeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = NodeRef(s)
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if len(obj.ID) == 0 {
			*r = ""
			return nil
		}
		var inner NodeRef
		if err := inner.UnmarshalJSON(obj.ID); err != nil {
			return err
		}
		*r = inner
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("node reference: unsupported value %s", data)
		}
		*r = NodeRef(n.String())
	}
	return nil
}

// Graph is an immutable snapshot of nodes and call edges. Every derived view
// is recomputed from a Graph; nothing is updated incrementally.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Edge `json:"links"`
}

// New returns a graph over copies of the given slices.
func New(nodes []Node, links []Edge) *Graph {
	g := &Graph{
		Nodes: make([]Node, len(nodes)),
		Links: make([]Edge, len(links)),
	}
	copy(g.Nodes, nodes)
	copy(g.Links, links)
	return g
}

// Stats summarises a graph for status lines.
type Stats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Stats returns node and edge counts.
func (g *Graph) Stats() Stats {
	if g == nil {
		return Stats{}
	}
	return Stats{Nodes: len(g.Nodes), Edges: len(g.Links)}
}

// Index maps node ids to nodes. When ids repeat, the first node wins.
func (g *Graph) Index() map[string]Node {
	idx := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := idx[n.ID]; !ok {
			idx[n.ID] = n
		}
	}
	return idx
}

// IDs returns node ids in node-list order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// outgoing groups edge targets by source, preserving edge order.
func (g *Graph) outgoing() map[string][]string {
	out := make(map[string][]string)
	for _, e := range g.Links {
		if !e.Valid() {
			continue
		}
		out[e.Source] = append(out[e.Source], e.Target)
	}
	return out
}
