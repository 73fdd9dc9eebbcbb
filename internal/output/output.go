// Package output serializes a finished scan and writes it as an artifact the
// viewer can load.
package output

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/idelchi/dirviz/internal/dirviz"
)

const (
	// ScanFile is the artifact name inside a saved viewer directory.
	ScanFile = "scan.json"
	// Prefix starts every artifact and saved directory name.
	Prefix = "dv_"
)

// ErrNoDestination is returned when neither a save directory nor a data directory is set.
var ErrNoDestination = errors.New("no output destination configured")

// Document is the JSON shape consumed by the viewer.
type Document struct {
	// Root is the synthetic root node of the tree.
	Root *dirviz.Node `json:"root"`

	dirviz.Metadata

	// FSTotalBytes is the capacity of the filesystem holding the scanned directory.
	FSTotalBytes uint64 `json:"fs_total_bytes"`
}

// NewDocument wraps scan for serialization. capacity may be zero if unknown.
func NewDocument(scan *dirviz.Scan, capacity uint64) *Document {
	return &Document{
		Root:         scan.Root,
		Metadata:     scan.Meta,
		FSTotalBytes: capacity,
	}
}

// Encode writes doc as JSON to w, gzip-compressed when compress is set.
func Encode(w io.Writer, doc *Document, compress bool) error {
	if !compress {
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	}

	gz := gzip.NewWriter(w)

	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		_ = gz.Close()

		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("compressing JSON output: %w", err)
	}

	return nil
}

// Destination describes where an artifact goes.
type Destination struct {
	// SaveDir, when set, receives a directory dv_<token>/ holding the viewer and scan.json.
	SaveDir string
	// DataDir receives dv_<token>.json when SaveDir is empty.
	DataDir string
	// Compress gzips the JSON.
	Compress bool
	// Assets is copied into the saved directory. It may be nil.
	Assets fs.FS
}

// Artifact describes a written scan.
type Artifact struct {
	// Path is the written JSON file.
	Path string
	// SiteDir is the saved viewer directory, empty unless a save directory was used.
	SiteDir string
	// Token identifies the artifact.
	Token string
	// Compressed reports whether Path is gzip-compressed.
	Compressed bool
}

// Write encodes doc and stores it according to dest, replacing any previous
// artifact with the same token.
func Write(doc *Document, token string, dest Destination) (Artifact, error) {
	artifact := Artifact{Token: token, Compressed: dest.Compress}

	switch {
	case dest.SaveDir != "":
		artifact.SiteDir = filepath.Join(dest.SaveDir, Prefix+token)

		if err := os.RemoveAll(artifact.SiteDir); err != nil {
			return Artifact{}, fmt.Errorf("removing previous output %q: %w", artifact.SiteDir, err)
		}

		if err := os.MkdirAll(artifact.SiteDir, 0o755); err != nil {
			return Artifact{}, fmt.Errorf("creating output directory: %w", err)
		}

		if dest.Assets != nil {
			if err := os.CopyFS(artifact.SiteDir, dest.Assets); err != nil {
				return Artifact{}, fmt.Errorf("copying viewer assets: %w", err)
			}
		}

		artifact.Path = filepath.Join(artifact.SiteDir, ScanFile)
	case dest.DataDir != "":
		if err := os.MkdirAll(dest.DataDir, 0o755); err != nil {
			return Artifact{}, fmt.Errorf("creating data directory: %w", err)
		}

		artifact.Path = filepath.Join(dest.DataDir, Prefix+token+".json")
	default:
		return Artifact{}, ErrNoDestination
	}

	if err := writeFile(artifact.Path, doc, dest.Compress); err != nil {
		return Artifact{}, err
	}

	return artifact, nil
}

// writeFile encodes doc into a temporary file next to path and renames it into place.
func writeFile(path string, doc *Document, compress bool) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck // Already renamed on success

	if err := Encode(tmp, doc, compress); err != nil {
		_ = tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting output file mode: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}
