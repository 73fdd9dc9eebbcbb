// Package dirviz computes per-directory disk usage for a directory subtree and
// produces a pruned hierarchical tree suitable for space-filling visualizations.
//
// A sequential skeleton builder walks the tree and creates one node per
// directory while a fixed pool of workers stats the immediate entries of every
// visited directory in parallel. Once the skeleton is complete the worker
// results are joined back into it by path, and visually negligible subtrees are
// pruned away.
package dirviz
