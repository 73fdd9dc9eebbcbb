package dirviz

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/idelchi/dirviz/internal/metrics"
)

// ScanResult aggregates the immediate non-directory entries of one directory.
type ScanResult struct {
	// Path is the directory that was scanned.
	Path string
	// Bytes is the total size of the directory's own files.
	Bytes int64
	// Files is the number of the directory's own files.
	Files int64
	// Newest is the newest file modification time in unix seconds, or 0 without files.
	Newest int64
}

// ScanFunc performs a shallow scan of one directory.
type ScanFunc func(path string) (ScanResult, error)

// Scanner stats the immediate entries of a directory without recursing.
type Scanner struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewScanner creates a Scanner. Both arguments may be nil.
func NewScanner(log *zap.Logger, m *metrics.Metrics) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}

	return &Scanner{log: log, metrics: m}
}

// Scan lists dir, skips subdirectories and sums size, count and newest
// modification time over everything else. Symbolic links are never followed.
//
// An error is returned only if dir itself cannot be listed; inaccessible
// entries are skipped individually.
func (s *Scanner) Scan(dir string) (ScanResult, error) {
	root := filepath.Clean(dir)

	var (
		files   atomic.Int64
		bytes   atomic.Int64
		newest  atomic.Int64
		mu      sync.Mutex
		listErr error
	)

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: 1,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				mu.Lock()
				listErr = err
				mu.Unlock()

				return nil
			}

			s.log.Debug("skipping entry", zap.String("path", path), zap.Error(err))
			s.metrics.ObserveSkip(metrics.StageStat)

			return nil
		}

		if path == root {
			return nil
		}

		// Subdirectories are scanned as their own tasks
		if d.IsDir() {
			return filepath.SkipDir
		}

		info, err := d.Info()
		if err != nil {
			s.log.Debug("skipping entry", zap.String("path", path), zap.Error(err))
			s.metrics.ObserveSkip(metrics.StageStat)

			return nil //nolint:nilerr // Intentionally skip errors during scan
		}

		files.Add(1)
		bytes.Add(info.Size())
		storeMax(&newest, info.ModTime().Unix())

		return nil
	})
	if walkErr != nil {
		return ScanResult{}, walkErr
	}

	if listErr != nil {
		return ScanResult{}, listErr
	}

	return ScanResult{
		Path:   dir,
		Bytes:  bytes.Load(),
		Files:  files.Load(),
		Newest: newest.Load(),
	}, nil
}

// storeMax raises v to value if value is larger.
func storeMax(v *atomic.Int64, value int64) {
	for {
		current := v.Load()
		if value <= current || v.CompareAndSwap(current, value) {
			return
		}
	}
}

// isSkippable reports whether err is one of the expected steady-state errors.
func isSkippable(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}
