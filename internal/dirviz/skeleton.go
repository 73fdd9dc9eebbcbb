package dirviz

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idelchi/dirviz/internal/metrics"
)

// skeletonBuilder walks the directory tree depth-first, creating one node per
// directory and submitting every listable directory for a shallow scan.
//
// The walk ignores the display-depth limit; it is only applied when joining.
type skeletonBuilder struct {
	submit     func(path string)
	stats      *collectionStats
	trackMtime bool
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// build attaches the node for the directory at path under parent and descends into it.
func (b *skeletonBuilder) build(ctx context.Context, path, name string, parent *Node) {
	b.visit(ctx, path, name, parent, 1)
}

func (b *skeletonBuilder) visit(ctx context.Context, path, name string, parent *Node, depth int) {
	b.stats.observeDepth(depth)

	node := parent.addChild(name, b.trackMtime)

	entries, err := readDir(path)
	if err != nil && len(entries) == 0 {
		b.log.Debug("not descending into directory", zap.String("path", path), zap.Error(err))
		b.metrics.ObserveSkip(metrics.StageWalk)

		return
	}

	if err != nil {
		b.log.Debug("partial directory listing", zap.String("path", path), zap.Error(err))
	}

	b.submit(path)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		if entry.IsDir() {
			b.visit(ctx, filepath.Join(path, entry.Name()), entry.Name(), node, depth+1)
		}
	}
}

// readDir is os.ReadDir without sorting the entries.
func readDir(name string) ([]os.DirEntry, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return file.ReadDir(-1)
}
