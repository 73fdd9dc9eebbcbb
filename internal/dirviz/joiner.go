package dirviz

import (
	"go.uber.org/zap"
)

// joiner folds scan results into a finished skeleton. It runs on the
// coordinator only, after the skeleton builder has returned.
type joiner struct {
	tree       *Node
	root       scanRoot
	depth      int
	trackMtime bool
	stats      *collectionStats
	log        *zap.Logger
}

// join adds result to every node on its path, stopping at the display-depth limit.
// Contributions from deeper directories land on the boundary node.
func (j *joiner) join(result ScanResult) {
	parts, ok := j.root.components(result.Path)
	if !ok {
		j.log.Debug("result outside scan root", zap.String("path", result.Path))

		return
	}

	var current *Node

	for i, part := range parts {
		if j.depth > 0 && i+1 > j.depth {
			break
		}

		if i == 0 {
			current = j.tree
		} else if current = current.Child(part); current == nil {
			j.log.Debug("no node for result", zap.String("path", result.Path), zap.String("missing", part))

			return
		}

		current.Size += result.Bytes
		current.Count += result.Files

		// Extremes only see values that raise a node's mtime, so oldest_dir depends
		// on join order rather than being the minimum over every directory.
		if j.trackMtime && current.Mtime != nil && result.Newest > *current.Mtime {
			j.stats.observeMtime(result.Newest)
			*current.Mtime = result.Newest
		}
	}
}
