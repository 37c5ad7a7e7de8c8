package graph

import (
	"sort"
	"strings"
)

// DefaultDelimiter separates namespace segments in node ids.
const DefaultDelimiter = "/"

// RootName is the name of every namespace tree root.
const RootName = "root"

// NamespaceNode is a directory (internal node) or a function (leaf) in the
// namespace tree. Leaves carry the full node ID and a weight of at least 1.
type NamespaceNode struct {
	Name     string           `json:"name"`
	ID       string           `json:"id,omitempty"`
	Weight   int              `json:"value,omitempty"`
	Imports  []string         `json:"imports,omitempty"`
	Children []*NamespaceNode `json:"children,omitempty"`

	leaf bool
	dirs map[string]*NamespaceNode
}

func newDir(name string) *NamespaceNode {
	return &NamespaceNode{Name: name, dirs: make(map[string]*NamespaceNode)}
}

// IsLeaf reports whether the node is a function leaf.
func (n *NamespaceNode) IsLeaf() bool { return n.leaf }

// BuildNamespaceTree splits each id on delim (DefaultDelimiter when empty).
// Every segment but the last becomes a directory shared by all ids with the
// same prefix; the last becomes a leaf weighted by weights[id], or 1 when the
// id is unknown or has no calls.
func BuildNamespaceTree(ids []string, weights map[string]int, delim string) *NamespaceNode {
	if delim == "" {
		delim = DefaultDelimiter
	}
	root := newDir(RootName)
	for _, id := range ids {
		parts := strings.Split(id, delim)
		current := root
		for _, part := range parts[:len(parts)-1] {
			current = current.dir(part)
		}
		w := weights[id]
		if w < 1 {
			w = 1
		}
		current.Children = append(current.Children, &NamespaceNode{
			Name:   parts[len(parts)-1],
			ID:     id,
			Weight: w,
			leaf:   true,
		})
	}
	return root
}

// dir returns the child directory called name, creating it when missing.
// Only directories are reused; a leaf with the same name stays separate.
func (n *NamespaceNode) dir(name string) *NamespaceNode {
	if child, ok := n.dirs[name]; ok {
		return child
	}
	child := newDir(name)
	n.dirs[name] = child
	n.Children = append(n.Children, child)
	return child
}

// Lookup descends the tree along id's segments and returns the matching leaf.
func (n *NamespaceNode) Lookup(id, delim string) (*NamespaceNode, bool) {
	if delim == "" {
		delim = DefaultDelimiter
	}
	parts := strings.Split(id, delim)
	current := n
	for _, part := range parts[:len(parts)-1] {
		next, ok := current.dirs[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	for _, child := range current.Children {
		if child.leaf && child.ID == id {
			return child, true
		}
	}
	return nil, false
}

// Value is the summed weight of every leaf below n.
func (n *NamespaceNode) Value() int {
	if n.leaf {
		return n.Weight
	}
	total := 0
	for _, c := range n.Children {
		total += c.Value()
	}
	return total
}

// Leaves returns every leaf in depth-first order.
func (n *NamespaceNode) Leaves() []*NamespaceNode {
	var out []*NamespaceNode
	n.walk(func(node *NamespaceNode, _ []string) {
		if node.leaf {
			out = append(out, node)
		}
	})
	return out
}

// Walk visits every node depth-first with the names of its ancestors,
// excluding the root.
func (n *NamespaceNode) Walk(fn func(node *NamespaceNode, path []string)) {
	n.walk(fn)
}

func (n *NamespaceNode) walk(fn func(*NamespaceNode, []string)) {
	var visit func(node *NamespaceNode, path []string)
	visit = func(node *NamespaceNode, path []string) {
		fn(node, path)
		if node.leaf {
			return
		}
		childPath := path
		if node != n {
			childPath = append(append([]string(nil), path...), node.Name)
		}
		for _, c := range node.Children {
			visit(c, childPath)
		}
	}
	visit(n, nil)
}

// SortByValue orders children by descending value at every level.
func (n *NamespaceNode) SortByValue() {
	if n.leaf {
		return
	}
	sort.SliceStable(n.Children, func(i, j int) bool {
		return n.Children[i].Value() > n.Children[j].Value()
	})
	for _, c := range n.Children {
		c.SortByValue()
	}
}
