package graph

import (
	json "github.com/goccy/go-json"
)

// Degree holds call counts for one node.
type Degree struct {
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}

// Total is the number of edge endpoints touching the node.
func (d Degree) Total() int { return d.Incoming + d.Outgoing }

// DegreeMap maps node ids to their degree. It remembers insertion order so
// rankings can break ties deterministically.
type DegreeMap struct {
	order  []string
	counts map[string]*Degree
	edges  int
}

// CountDegrees computes per-node incoming and outgoing call counts. Every
// supplied node gets an entry, in node order. Edge endpoints that are not in
// the node list still get an entry, appended in first-seen order. Edges
// missing a source or target are skipped.
func CountDegrees(nodes []Node, edges []Edge) *DegreeMap {
	m := &DegreeMap{counts: make(map[string]*Degree, len(nodes))}
	for _, n := range nodes {
		m.entry(n.ID)
	}
	for _, e := range edges {
		if !e.Valid() {
			continue
		}
		m.entry(e.Source).Outgoing++
		m.entry(e.Target).Incoming++
		m.edges++
	}
	return m
}

// Degrees is shorthand for CountDegrees over the graph's own lists.
func (g *Graph) Degrees() *DegreeMap {
	return CountDegrees(g.Nodes, g.Links)
}

func (m *DegreeMap) entry(id string) *Degree {
	d, ok := m.counts[id]
	if !ok {
		d = &Degree{}
		m.counts[id] = d
		m.order = append(m.order, id)
	}
	return d
}

// Get returns the degree for id.
func (m *DegreeMap) Get(id string) (Degree, bool) {
	d, ok := m.counts[id]
	if !ok {
		return Degree{}, false
	}
	return *d, true
}

// Total returns incoming+outgoing for id, or 0 when unknown.
func (m *DegreeMap) Total(id string) int {
	if d, ok := m.counts[id]; ok {
		return d.Total()
	}
	return 0
}

// IDs returns every tracked id in insertion order.
func (m *DegreeMap) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len is the number of tracked ids.
func (m *DegreeMap) Len() int { return len(m.order) }

// TotalCalls is the number of counted edges.
func (m *DegreeMap) TotalCalls() int { return m.edges }

// MaxTotal returns the largest incoming+outgoing value, or 0 for an empty map.
func (m *DegreeMap) MaxTotal() int {
	best := 0
	for _, d := range m.counts {
		if t := d.Total(); t > best {
			best = t
		}
	}
	return best
}

// Totals returns id -> incoming+outgoing for every tracked id.
func (m *DegreeMap) Totals() map[string]int {
	out := make(map[string]int, len(m.counts))
	for id, d := range m.counts {
		out[id] = d.Total()
	}
	return out
}

// MarshalJSON encodes the map as {"id": {"incoming": n, "outgoing": n}}.
func (m *DegreeMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]Degree, len(m.counts))
	for id, d := range m.counts {
		out[id] = *d
	}
	return json.Marshal(out)
}
