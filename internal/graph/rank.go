package graph

import "sort"

// Common list sizes used by the views.
const (
	HeatmapSize           = 20
	DefaultChordThreshold = 50
)

// ChordThresholds are the selectable sizes for the ranked relationship view.
var ChordThresholds = []int{25, 50, 100}

// ValidThreshold reports whether k is one of ChordThresholds.
func ValidThreshold(k int) bool {
	for _, t := range ChordThresholds {
		if t == k {
			return true
		}
	}
	return false
}

// RankedNode is one row of a degree ranking.
type RankedNode struct {
	ID       string `json:"id"`
	Incoming int    `json:"incoming"`
	Outgoing int    `json:"outgoing"`
	Total    int    `json:"total"`
}

// TopK ranks every id in the map by total degree, highest first. Ties keep
// the map's insertion order. k <= 0 or k >= Len returns the whole ranking.
func TopK(m *DegreeMap, k int) []RankedNode {
	ranked := make([]RankedNode, 0, m.Len())
	for _, id := range m.order {
		d := m.counts[id]
		ranked = append(ranked, RankedNode{
			ID:       id,
			Incoming: d.Incoming,
			Outgoing: d.Outgoing,
			Total:    d.Total(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// Intensity normalizes count against peak into [0, 1]. A zero or negative
// peak yields 0 for every count.
func Intensity(count, peak int) float64 {
	if peak <= 0 || count <= 0 {
		return 0
	}
	v := float64(count) / float64(peak)
	if v > 1 {
		return 1
	}
	return v
}
