package dirviz

import (
	"math"
)

// PruneThreshold is the angular thickness in radians below which subtrees are dropped.
const PruneThreshold = 0.005

// Prune removes visually negligible subtrees from the tree rooted at root.
// Aggregates are left untouched; they still include whatever was removed.
func Prune(root *Node) {
	pruneNode(root, root.Size, root.Count, PruneThreshold)
}

// pruneNode drops or keeps all children of node together.
//
// The thickness is computed from node's own share of the tree, not from each
// child's, so every sibling gets the same verdict.
func pruneNode(node *Node, totalSize, totalCount int64, threshold float64) {
	if len(node.Children) == 0 {
		return
	}

	sizeThickness := 2 * math.Pi * share(node.Size, totalSize)
	countThickness := 2 * math.Pi * share(node.Count, totalCount)

	if sizeThickness < threshold && countThickness < threshold {
		clear(node.Children)

		return
	}

	for _, child := range node.Children {
		pruneNode(child, totalSize, totalCount, threshold)
	}
}

// share returns part/total, treating an empty total as a zero share.
func share(part, total int64) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total)
}
