// Command dirviz scans a directory tree and writes a sunburst plot of its disk usage.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dirviz/internal/cli"
)

// version is set at build time.
var version = "unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dirviz: %v\n", err)
		os.Exit(1)
	}
}
