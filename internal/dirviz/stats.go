package dirviz

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/idelchi/dirviz/internal/metrics"
)

const (
	// DefaultWorkers is the default number of parallel scan workers.
	DefaultWorkers = 5
	// DefaultDepth is the default display-depth limit, counting the synthetic root as 1.
	DefaultDepth = 10
	// DefaultPollInterval bounds how long a single queue receive may wait.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultStallTimeout is how long the joiner waits without hearing from any worker.
	DefaultStallTimeout = 2 * time.Minute
	// DefaultWorkerJoinTimeout bounds the final wait for worker goroutines to exit.
	DefaultWorkerJoinTimeout = 500 * time.Millisecond
)

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Workers is the number of parallel scan workers (default 5).
	Workers int
	// Depth is the display-depth limit (0=unlimited). The synthetic root counts as depth 1.
	Depth int
	// ModTime enables modification-time tracking.
	ModTime bool
	// Fade requests age-based fading in the viewer. It implies ModTime.
	Fade bool
	// PollInterval bounds each blocking queue receive.
	PollInterval time.Duration
	// StallTimeout is how long draining may go without any worker message
	// before the missing workers are given up on (negative disables it).
	StallTimeout time.Duration
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug and warning output. Nil disables logging.
	Logger *zap.Logger
	// Metrics receives scan counters. Nil disables metrics.
	Metrics *metrics.Metrics
	// Clock provides the scan timestamp and stall timing. Nil uses the real clock.
	Clock clockwork.Clock
}

// withDefaults returns a copy of opt with unset fields filled in.
func (opt Options) withDefaults() Options {
	if opt.Path == "" {
		opt.Path = "."
	}

	if opt.Workers <= 0 {
		opt.Workers = DefaultWorkers
	}

	if opt.Depth < 0 {
		opt.Depth = 0
	}

	if opt.Fade {
		opt.ModTime = true
	}

	if opt.PollInterval <= 0 {
		opt.PollInterval = DefaultPollInterval
	}

	if opt.StallTimeout == 0 {
		opt.StallTimeout = DefaultStallTimeout
	}

	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	if opt.Clock == nil {
		opt.Clock = clockwork.NewRealClock()
	}

	return opt
}

// Metadata describes a finished scan.
type Metadata struct {
	// TreeDepth is the deepest directory level reached by the walk (scanned directory = 1).
	TreeDepth int `json:"tree_depth"`
	// MaxDepth is the configured display-depth limit (0=unlimited).
	MaxDepth int `json:"max_depth"`
	// ScannedDir is the absolute scanned path without any drive letter.
	ScannedDir string `json:"scanned_dir"`
	// ScanTime is the unix time at which the scan completed.
	ScanTime int64 `json:"scan_time"`
	// ModTime reports whether modification times were tracked.
	ModTime bool `json:"mtime_on"`
	// PathSep is the separator used by ScannedDir.
	PathSep string `json:"path_sep"`
	// DriveLetter is the volume name split off the scanned path, if any.
	DriveLetter string `json:"drive_letter"`
	// Fade reports whether the viewer should fade old directories.
	Fade bool `json:"fade_on"`
	// OldestDir and NewestDir are the extremes of per-directory modification times.
	OldestDir int64 `json:"oldest_dir"`
	NewestDir int64 `json:"newest_dir"`
	// Elapsed is the total time taken by the scan.
	Elapsed time.Duration `json:"-"`
	// UnfinishedWorkers is the number of workers that never acknowledged termination.
	UnfinishedWorkers int `json:"-"`
	// CrashedWorkers is the number of workers that stopped on a panic.
	CrashedWorkers int `json:"-"`
}

// Scan is the result of a completed scan.
type Scan struct {
	// Root is the synthetic root of the pruned tree.
	Root *Node
	// Meta describes the scan.
	Meta Metadata
}

// collectionStats is coordinator-owned bookkeeping. Only the skeleton builder
// and the joiner touch it, and never at the same time.
type collectionStats struct {
	treeDepth int
	oldestDir int64
	newestDir int64
	seenMtime bool
}

// observeDepth records a directory level reached by the walk.
func (c *collectionStats) observeDepth(depth int) {
	if depth > c.treeDepth {
		c.treeDepth = depth
	}
}

// observeMtime records a directory aggregate modification time.
func (c *collectionStats) observeMtime(mtime int64) {
	if !c.seenMtime || mtime < c.oldestDir {
		c.oldestDir = mtime
	}

	if !c.seenMtime || mtime > c.newestDir {
		c.newestDir = mtime
	}

	c.seenMtime = true
}
