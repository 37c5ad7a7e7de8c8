package graph

import (
	"errors"
	"fmt"
)

const (
	// DefaultCallTreeDepth bounds call tree expansion.
	DefaultCallTreeDepth = 3
	// MaxCallTreeDepth is the deepest walk a caller may request. Tree size
	// grows with fan-out to the power of depth.
	MaxCallTreeDepth = 6
)

// ErrDepthOutOfRange is returned for call tree depths above MaxCallTreeDepth.
var ErrDepthOutOfRange = errors.New("call tree depth out of range")

// CheckCallTreeDepth rejects depths outside [0, MaxCallTreeDepth].
func CheckCallTreeDepth(depth int) error {
	if depth < 0 || depth > MaxCallTreeDepth {
		return fmt.Errorf("%w: %d is not between 0 and %d", ErrDepthOutOfRange, depth, MaxCallTreeDepth)
	}
	return nil
}

// CallTreeNode is one call in a call tree. Children lists the calls made
// from ID, one entry per outgoing edge.
type CallTreeNode struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Children []CallTreeNode `json:"children"`
}

// WalkCallTree follows outgoing edges from nodeID. Each edge yields one child.
// A child is not expanded when its id is already on the path from the root
// or when the walk has gone past maxDepth levels; the visited set is copied
// per branch, so the same id may appear under different siblings. Targets
// missing from the node list are labelled with their raw id. A negative
// maxDepth means DefaultCallTreeDepth; anything above MaxCallTreeDepth is
// clamped to it.
func WalkCallTree(g *Graph, nodeID string, maxDepth int) []CallTreeNode {
	if maxDepth < 0 {
		maxDepth = DefaultCallTreeDepth
	}
	maxDepth = min(maxDepth, MaxCallTreeDepth)
	w := &callTreeWalker{
		out:      g.outgoing(),
		index:    g.Index(),
		maxDepth: maxDepth,
	}
	return w.walk(nodeID, map[string]struct{}{}, 0)
}

type callTreeWalker struct {
	out      map[string][]string
	index    map[string]Node
	maxDepth int
}

func (w *callTreeWalker) walk(id string, visited map[string]struct{}, depth int) []CallTreeNode {
	if depth > w.maxDepth {
		return []CallTreeNode{}
	}
	if _, seen := visited[id]; seen {
		return []CallTreeNode{}
	}
	path := make(map[string]struct{}, len(visited)+1)
	for k := range visited {
		path[k] = struct{}{}
	}
	path[id] = struct{}{}

	targets := w.out[id]
	children := make([]CallTreeNode, 0, len(targets))
	for _, target := range targets {
		children = append(children, CallTreeNode{
			ID:       target,
			Label:    w.label(target),
			Children: w.walk(target, path, depth+1),
		})
	}
	return children
}

func (w *callTreeWalker) label(id string) string {
	if n, ok := w.index[id]; ok {
		return n.DisplayName()
	}
	return id
}
