package dirviz

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the scan root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// scanRoot describes the normalized root of a scan.
type scanRoot struct {
	// walk is the absolute path used for filesystem access, with symlinks resolved.
	walk string
	// display is the absolute path without its volume name.
	display string
	// volume is the drive letter or UNC prefix split off the path.
	volume string
	// name is the key of the scanned directory under the synthetic root.
	name string
}

// resolveRoot normalizes path and validates that it names an accessible directory.
func resolveRoot(path string) (scanRoot, error) {
	// Normalize to native format to handle both C:/Path and C:\Path inputs
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return scanRoot{}, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return scanRoot{}, fmt.Errorf("accessing path %q: %w", abs, err)
	}

	if !info.IsDir() {
		return scanRoot{}, fmt.Errorf("path %q: %w", abs, ErrNotDirectory)
	}

	walk, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return scanRoot{}, fmt.Errorf("resolving symlinks in %q: %w", abs, err)
	}

	volume := filepath.VolumeName(abs)
	display := strings.TrimPrefix(abs, volume)

	return scanRoot{
		walk:    walk,
		display: display,
		volume:  volume,
		name:    rootName(display),
	}, nil
}

// rootName returns the node name used for the scanned directory.
// A filesystem root has no base name, so it is named by its path.
func rootName(display string) string {
	base := filepath.Base(display)
	if base == string(filepath.Separator) || base == "." || base == "" {
		return display
	}

	return base
}

// components splits path into the node names leading to it from the synthetic root.
// The second return value is false if path does not lie under the scan root.
func (r scanRoot) components(path string) ([]string, bool) {
	rel, err := filepath.Rel(r.walk, path)
	if err != nil {
		return nil, false
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}

	parts := []string{RootName, r.name}
	if rel == "." {
		return parts, true
	}

	return append(parts, strings.Split(rel, string(filepath.Separator))...), true
}
