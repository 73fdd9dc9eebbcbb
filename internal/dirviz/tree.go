package dirviz

import (
	"sort"
)

// RootName is the name of the synthetic node at the top of every tree.
const RootName = "root"

// Node represents one directory and the aggregates of its subtree.
type Node struct {
	// Name is the last path component of the directory.
	Name string `json:"name"`
	// Size is the number of bytes aggregated over this node and its descendants,
	// up to the display-depth limit.
	Size int64 `json:"size"`
	// Count is the number of files aggregated the same way as Size.
	Count int64 `json:"count"`
	// Mtime is the newest modification time (unix seconds) seen in the subtree.
	// It is nil unless modification-time tracking is enabled.
	Mtime *int64 `json:"mtime,omitempty"`
	// Children maps child names to child nodes.
	Children map[string]*Node `json:"children"`
}

// newNode creates an empty node, allocating Mtime when tracking is enabled.
func newNode(name string, trackMtime bool) *Node {
	node := &Node{
		Name:     name,
		Children: make(map[string]*Node),
	}

	if trackMtime {
		node.Mtime = new(int64)
	}

	return node
}

// addChild creates and attaches a child called name, replacing any previous one.
func (n *Node) addChild(name string, trackMtime bool) *Node {
	child := newNode(name, trackMtime)
	n.Children[name] = child

	return child
}

// Child returns the named child or nil.
func (n *Node) Child(name string) *Node {
	return n.Children[name]
}

// Lookup follows names from n and returns the node reached, or nil if any step is missing.
func (n *Node) Lookup(names ...string) *Node {
	current := n

	for _, name := range names {
		if current = current.Child(name); current == nil {
			return nil
		}
	}

	return current
}

// SortedChildren returns the children ordered by size, largest first, then by name.
func (n *Node) SortedChildren() []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child)
	}

	sort.Slice(children, func(i, j int) bool {
		if children[i].Size != children[j].Size {
			return children[i].Size > children[j].Size
		}

		return children[i].Name < children[j].Name
	})

	return children
}

// Walk calls fn for n and every descendant in depth-first order.
// depth is 1 for n itself.
func (n *Node) Walk(fn func(depth int, node *Node)) {
	n.walk(1, fn)
}

func (n *Node) walk(depth int, fn func(int, *Node)) {
	fn(depth, n)

	for _, child := range n.SortedChildren() {
		child.walk(depth+1, fn)
	}
}

// NodeCount returns the number of nodes in the subtree rooted at n.
func (n *Node) NodeCount() int {
	count := 0

	n.Walk(func(int, *Node) { count++ })

	return count
}
