//go:build !linux && !darwin && !freebsd && !windows

package output

import (
	"errors"
)

// Capacity is not available on this platform.
func Capacity(string) (uint64, error) {
	return 0, errors.New("filesystem capacity is not supported on this platform")
}
