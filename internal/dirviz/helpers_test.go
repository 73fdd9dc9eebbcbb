package dirviz

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile creates a file of the given size under base, creating parent directories.
func writeFile(t *testing.T, base, rel string, size int) string {
	t.Helper()

	path := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))

	return path
}

// mkdir creates a directory (and parents) under base.
func mkdir(t *testing.T, base, rel string) string {
	t.Helper()

	path := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(path, 0o755))

	return path
}

// touch sets the modification time of path to unix seconds.
func touch(t *testing.T, path string, unix int64) {
	t.Helper()

	mtime := time.Unix(unix, 0)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// canDenyPermissions reports whether permission bits are enforced for the test process.
func canDenyPermissions() bool {
	return runtime.GOOS != "windows" && os.Geteuid() != 0
}
