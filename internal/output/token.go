package output

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// UniqueToken returns a random token, giving every scan its own artifact.
func UniqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RootToken returns a token derived from the scanned location, so that
// rescanning the same directory overwrites the previous artifact.
func RootToken(driveLetter, scannedDir string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(driveLetter+scannedDir))
}
