//go:build windows

package output

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Capacity returns the total size in bytes of the volume holding path.
func Capacity(path string) (uint64, error) {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, fmt.Errorf("encoding path %q: %w", path, err)
	}

	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &free, &total, &totalFree); err != nil {
		return 0, fmt.Errorf("querying disk space of %q: %w", path, err)
	}

	return total, nil
}
