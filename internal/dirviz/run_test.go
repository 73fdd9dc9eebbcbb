package dirviz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/idelchi/dirviz/internal/metrics"
)

// testOptions returns options for scanning path with fast polling.
func testOptions(t *testing.T, path string) Options {
	t.Helper()

	return Options{
		Path:         path,
		Workers:      DefaultWorkers,
		PollInterval: 5 * time.Millisecond,
		Logger:       zaptest.NewLogger(t),
	}
}

func TestRunTwoDirectoryScenario(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	writeFile(t, base, "a/f1", 100)
	writeFile(t, base, "b/f2", 5)

	opt := testOptions(t, base)
	opt.Depth = 0

	scan, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	root := scan.Root
	assert.Equal(t, RootName, root.Name)
	assert.Equal(t, int64(105), root.Size)
	assert.Equal(t, int64(2), root.Count)
	assert.Nil(t, root.Mtime)

	a := root.Lookup("proj", "a")
	require.NotNil(t, a)
	assert.Equal(t, int64(100), a.Size)
	assert.Equal(t, int64(1), a.Count)

	b := root.Lookup("proj", "b")
	require.NotNil(t, b)
	assert.Equal(t, int64(5), b.Size)
	assert.Equal(t, int64(1), b.Count)

	assert.Equal(t, 2, scan.Meta.TreeDepth)
	assert.Equal(t, string(filepath.Separator), scan.Meta.PathSep)
	assert.False(t, scan.Meta.ModTime)
}

// buildSynthetic creates dirs×files files spread over nested directories and returns totals.
func buildSynthetic(t *testing.T, base string, dirs, files int) (size, count int64) {
	t.Helper()

	for d := range dirs {
		rel := fmt.Sprintf("d%d/sub%d", d%7, d)
		if d%3 == 0 {
			rel += "/deeper/still"
		}

		for f := range files {
			n := (d*files+f)%97 + 1
			writeFile(t, base, fmt.Sprintf("%s/f%d", rel, f), n)

			size += int64(n)
			count++
		}
	}

	return size, count
}

func TestRunTotalsIndependentOfWorkerCount(t *testing.T) {
	dirs, files := 100, 100
	if testing.Short() {
		dirs, files = 50, 40
	}

	base := filepath.Join(t.TempDir(), "synthetic")
	size, count := buildSynthetic(t, base, dirs, files)

	var trees []*Node

	for _, workers := range []int{1, 5, 32} {
		opt := testOptions(t, base)
		opt.Workers = workers
		opt.Depth = 0

		scan, err := Run(context.Background(), opt, nil)
		require.NoError(t, err)

		assert.Equal(t, size, scan.Root.Size, "workers=%d", workers)
		assert.Equal(t, count, scan.Root.Count, "workers=%d", workers)

		trees = append(trees, scan.Root)
	}

	for i := 1; i < len(trees); i++ {
		assert.Equal(t, trees[0], trees[i])
	}
}

func TestRunIsRepeatable(t *testing.T) {
	base := filepath.Join(t.TempDir(), "repeat")
	buildSynthetic(t, base, 10, 5)

	opt := testOptions(t, base)
	opt.ModTime = true

	first, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	second, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Root, second.Root)
	assert.Equal(t, first.Meta.NewestDir, second.Meta.NewestDir)
}

func TestRunDepthLimitFoldsIntoBoundary(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	writeFile(t, base, "a/f", 10)
	writeFile(t, base, "a/b/f", 20)
	writeFile(t, base, "a/b/c/d/f", 30)

	opt := testOptions(t, base)
	opt.Depth = 3

	scan, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	a := scan.Root.Lookup("proj", "a")
	require.NotNil(t, a)
	assert.Equal(t, int64(60), a.Size)
	assert.Equal(t, int64(3), a.Count)
	assert.Equal(t, int64(60), scan.Root.Size)

	scan.Root.Walk(func(depth int, node *Node) {
		if depth > opt.Depth {
			assert.Zero(t, node.Size, "node %s beyond the limit", node.Name)
			assert.Zero(t, node.Count, "node %s beyond the limit", node.Name)
		}
	})

	assert.Equal(t, 5, scan.Meta.TreeDepth, "the walk ignores the display limit")
	assert.Equal(t, 3, scan.Meta.MaxDepth)
}

func TestRunModificationTimes(t *testing.T) {
	const (
		t1 = int64(1_000_000_000)
		t2 = int64(1_500_000_000)
		t3 = int64(1_200_000_000)
	)

	base := filepath.Join(t.TempDir(), "proj")
	touch(t, writeFile(t, base, "a/old", 1), t1)
	touch(t, writeFile(t, base, "a/new", 1), t2)
	touch(t, writeFile(t, base, "b/only", 1), t3)

	opt := testOptions(t, base)
	opt.Fade = true

	scan, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	assert.True(t, scan.Meta.ModTime, "fade implies modification times")
	assert.True(t, scan.Meta.Fade)

	a := scan.Root.Lookup("proj", "a")
	require.NotNil(t, a.Mtime)
	assert.Equal(t, t2, *a.Mtime)
	assert.Equal(t, t3, *scan.Root.Lookup("proj", "b").Mtime)
	assert.Equal(t, t2, *scan.Root.Mtime)

	assert.Equal(t, t3, scan.Meta.OldestDir)
	assert.Equal(t, t2, scan.Meta.NewestDir)
}

func TestRunUnreadableDirectory(t *testing.T) {
	if !canDenyPermissions() {
		t.Skip("permissions are not enforced for this user")
	}

	base := filepath.Join(t.TempDir(), "proj")
	writeFile(t, base, "open/f", 10)
	writeFile(t, base, "locked/f", 1000)
	writeFile(t, base, "locked/inner/f", 1000)

	locked := filepath.Join(base, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	scan, err := Run(context.Background(), testOptions(t, base), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10), scan.Root.Size)
	assert.Equal(t, int64(1), scan.Root.Count)

	node := scan.Root.Lookup("proj", "locked")
	require.NotNil(t, node)
	assert.Zero(t, node.Size)
	assert.Zero(t, node.Count)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := Run(context.Background(), testOptions(t, filepath.Join(t.TempDir(), "nope")), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunRootIsFile(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file", 1)

	_, err := Run(context.Background(), testOptions(t, file), nil)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestRunMetadataAndMetrics(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	writeFile(t, base, "a/f", 3)
	writeFile(t, base, "b/c/f", 4)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := metrics.New()

	opt := testOptions(t, base)
	opt.Clock = clockwork.NewFakeClockAt(now)
	opt.Metrics = m

	scan, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	abs, err := filepath.Abs(base)
	require.NoError(t, err)

	assert.Equal(t, now.Unix(), scan.Meta.ScanTime)
	assert.Equal(t, abs[len(filepath.VolumeName(abs)):], scan.Meta.ScannedDir)
	assert.Equal(t, filepath.VolumeName(abs), scan.Meta.DriveLetter)
	assert.Zero(t, scan.Meta.UnfinishedWorkers)

	// proj, a, b, b/c
	assert.InDelta(t, 4, testutil.ToFloat64(m.DirsScanned), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.FilesScanned), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.BytesScanned), 0)
}

func TestRunCancelled(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	writeFile(t, base, "a/f", 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testOptions(t, base), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsProgress(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	buildSynthetic(t, base, 5, 5)

	calls := make(chan [2]int64, 1024)

	opt := testOptions(t, base)
	opt.ProgressInterval = time.Millisecond

	_, err := Run(context.Background(), opt, func(files, bytes int64) {
		select {
		case calls <- [2]int64{files, bytes}:
		default:
		}
	})
	require.NoError(t, err)

	for {
		select {
		case call := <-calls:
			assert.GreaterOrEqual(t, call[0], int64(0))
			assert.GreaterOrEqual(t, call[1], int64(0))
		default:
			return
		}
	}
}
