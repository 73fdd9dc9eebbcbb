package dirviz

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, pool *Pool, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, files, bytes := pool.Progress()
				hook(files, bytes)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans the directory tree at opt.Path and returns the pruned, aggregated tree.
//
// The root is validated before any worker starts. After that, inaccessible
// entries only reduce what is reported; they never fail the scan. Workers that
// stop responding are reported in the metadata rather than returned as an error.
//
// The scan can be cancelled via ctx. Progress updates are sent to progressHook
// if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Scan, error) {
	opt = opt.withDefaults()
	log := opt.Logger

	root, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, err
	}

	log.Debug("starting scan",
		zap.String("root", root.walk),
		zap.Int("workers", opt.Workers),
		zap.Int("depth", opt.Depth),
		zap.Bool("mtime", opt.ModTime),
	)

	start := opt.Clock.Now()

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanner := NewScanner(log, opt.Metrics)
	pool := NewPool(PoolConfig{
		Workers:      opt.Workers,
		Scan:         scanner.Scan,
		PollInterval: opt.PollInterval,
		Logger:       log,
		Metrics:      opt.Metrics,
		Clock:        opt.Clock,
	})
	pool.Start(ctx)

	startProgressReporter(ctx, pool, progressHook, opt.ProgressInterval)

	var stats collectionStats

	tree := newNode(RootName, opt.ModTime)

	builder := skeletonBuilder{
		submit:     pool.Submit,
		stats:      &stats,
		trackMtime: opt.ModTime,
		log:        log,
		metrics:    opt.Metrics,
	}
	builder.build(ctx, root.walk, root.name, tree)

	pool.Stop()

	joiner := joiner{
		tree:       tree,
		root:       root,
		depth:      opt.Depth,
		trackMtime: opt.ModTime,
		stats:      &stats,
		log:        log,
	}

	report, drainErr := pool.Drain(opt.StallTimeout, joiner.join)
	if drainErr != nil && !errors.Is(drainErr, ErrWorkersStalled) {
		return nil, drainErr
	}

	if drainErr != nil {
		log.Warn("scan results may be incomplete", zap.Error(drainErr))
	}

	if !pool.Wait(DefaultWorkerJoinTimeout) {
		log.Warn("abandoning scan workers that did not exit")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug("joined scan results",
		zap.Int("results", report.Results),
		zap.Int("crashed", report.Crashed),
		zap.Int("unfinished", report.Unfinished),
	)

	finished := opt.Clock.Now()

	meta := Metadata{
		TreeDepth:         stats.treeDepth,
		MaxDepth:          opt.Depth,
		ScannedDir:        root.display,
		ScanTime:          finished.Unix(),
		ModTime:           opt.ModTime,
		PathSep:           string(filepath.Separator),
		DriveLetter:       root.volume,
		Fade:              opt.Fade,
		OldestDir:         stats.oldestDir,
		NewestDir:         stats.newestDir,
		Elapsed:           finished.Sub(start),
		UnfinishedWorkers: report.Unfinished,
		CrashedWorkers:    report.Crashed,
	}

	Prune(tree)

	return &Scan{Root: tree, Meta: meta}, nil
}
