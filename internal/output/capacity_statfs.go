//go:build linux || darwin || freebsd

package output

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Capacity returns the total size in bytes of the filesystem holding path.
func Capacity(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %q: %w", path, err)
	}

	return uint64(st.Blocks) * uint64(st.Bsize), nil //nolint:gosec,unconvert // Field types vary by platform
}
