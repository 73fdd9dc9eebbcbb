package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/idelchi/dirviz/internal/dirviz"
)

// scannedNode returns the node of the scanned directory, the only child of the synthetic root.
func scannedNode(scan *dirviz.Scan) *dirviz.Node {
	for _, child := range scan.Root.Children {
		return child
	}

	return nil
}

// PrintSummary outputs the largest directories below the scanned one and the scan totals.
//
//nolint:forbidigo // This function prints output to the console.
func PrintSummary(scan *dirviz.Scan, top int, writer io.Writer) error {
	node := scannedNode(scan)
	if node == nil {
		return nil
	}

	children := node.SortedChildren()
	if len(children) > top {
		children = children[:top]
	}

	if len(children) > 0 {
		fmt.Fprintln(writer, "\nTop directories:")

		table := tablewriter.NewWriter(writer)
		table.SetHeader([]string{"#", "Directory", "Size", "Files", "Share"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
		})

		for i, child := range children {
			pct := 0.0
			if node.Size > 0 {
				pct = 100.0 * float64(child.Size) / float64(node.Size)
			}

			table.Append([]string{
				strconv.Itoa(i + 1),
				child.Name,
				humanize.IBytes(uint64(child.Size)), //nolint:gosec // Sizes are never negative
				humanize.Comma(child.Count),
				fmt.Sprintf("%.1f%%", pct),
			})
		}

		table.Render()
	}

	fmt.Fprintln(writer, "\nStats:")
	fmt.Fprintf(writer, "  Scanned:      %s\n", scan.Meta.DriveLetter+scan.Meta.ScannedDir)
	fmt.Fprintf(writer, "  Total files:  %s\n", humanize.Comma(node.Count))
	fmt.Fprintf(writer, "  Total size:   %s (%d bytes)\n",
		humanize.IBytes(uint64(node.Size)), node.Size) //nolint:gosec // Sizes are never negative
	fmt.Fprintf(writer, "  Tree depth:   %d\n", scan.Meta.TreeDepth)

	if scan.Meta.ModTime && scan.Meta.NewestDir > 0 {
		fmt.Fprintf(writer, "  Newest file:  %s\n", humanize.Time(time.Unix(scan.Meta.NewestDir, 0)))
	}

	if scan.Meta.UnfinishedWorkers > 0 {
		fmt.Fprintf(writer, "  Unfinished:   %d workers (results may be incomplete)\n", scan.Meta.UnfinishedWorkers)
	}

	if scan.Meta.CrashedWorkers > 0 {
		fmt.Fprintf(writer, "  Crashed:      %d workers (results may be incomplete)\n", scan.Meta.CrashedWorkers)
	}

	fmt.Fprintf(writer, "  Elapsed:      %v\n", scan.Meta.Elapsed)

	return nil
}
