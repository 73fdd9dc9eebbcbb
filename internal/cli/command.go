package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirviz/internal/config"
	"github.com/idelchi/dirviz/internal/dirviz"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// options holds the parsed command line.
type options struct {
	// scan configures the directory scan itself.
	scan dirviz.Options
	// unique gives the artifact a random name instead of one derived from the root.
	unique bool
	// save is the directory receiving a self-contained viewer directory.
	save string
	// saveAndHost is like save, then serves the result locally.
	saveAndHost string
	// port is the preview server port.
	port int
	// dataDir receives bare artifacts when not saving a viewer directory.
	dataDir string
	// noCompress writes plain JSON instead of gzip.
	noCompress bool
	// top is the number of rows in the summary table.
	top int
	// configFile is an optional YAML file with flag defaults.
	configFile string
	// debug enables debug logging.
	debug bool
}

// host reports whether the result should be served after saving.
func (o options) host() bool {
	return o.saveAndHost != ""
}

// validate checks and normalizes options before any scanning starts.
func (o *options) validate() error {
	if o.scan.Depth < 0 {
		return errors.New("depth cannot be negative")
	}

	if o.scan.Workers < 1 {
		return errors.New("processes must be at least 1")
	}

	if o.port < 1 || o.port > 65535 {
		return fmt.Errorf("invalid port %d", o.port)
	}

	if o.top < 0 {
		return errors.New("top cannot be negative")
	}

	if o.host() {
		o.save = o.saveAndHost
	}

	if o.save != "" {
		abs, err := filepath.Abs(o.save)
		if err != nil {
			return fmt.Errorf("resolving save directory: %w", err)
		}

		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return fmt.Errorf("save path %q is not a directory", abs)
		}

		o.save = abs
	}

	if o.scan.Fade {
		o.scan.ModTime = true
	}

	return nil
}

// Execute runs the CLI with the process arguments until done or interrupted.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dirviz [flags] directory",
		Short: "Visualize disk usage of a directory tree",
		Long: heredoc.Doc(`
			dirviz scans a directory tree with parallel workers and writes a
			sunburst plot of where the space goes.

			Every directory's size, file count and (optionally) newest modification
			time is aggregated up to the display depth. Directories too small to be
			seen in the plot are pruned from the output.

			Output:
			  By default the scan is written to <data-dir>/dv_<token>.json, where the
			  token is derived from the scanned path so that rescans overwrite it.
			  Use --unique for a fresh token every time.

			  With --save DIR a complete viewer is written to DIR/dv_<token>/.
			  With --save-and-host DIR it is additionally served on localhost.
		`),
		Example: heredoc.Doc(`
			dirviz ~/projects
			dirviz -p 16 -d 6 --modtime /var
			dirviz --fade --save-and-host /tmp/plots .
		`),
		Args:          cobra.ExactArgs(1),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile != "" {
				file, err := config.Load(opts.configFile)
				if err != nil {
					return err
				}

				if err := file.Apply(cmd.Flags()); err != nil {
					return err
				}
			}

			opts.scan.Path = args[0]

			if err := opts.validate(); err != nil {
				return err
			}

			return logic(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.IntVarP(&opts.scan.Workers, "processes", "p", dirviz.DefaultWorkers, "Number of parallel scan workers")
	flags.IntVarP(&opts.scan.Depth, "depth", "d", dirviz.DefaultDepth,
		"Depth of the directory tree to show (0=unlimited)")
	flags.BoolVarP(&opts.unique, "unique", "u", false,
		"Write a uniquely named plot instead of overwriting the previous scan of this directory")
	flags.BoolVarP(&opts.scan.ModTime, "modtime", "m", false,
		"Record the most recent file modification time of every directory")
	flags.BoolVarP(&opts.scan.Fade, "fade", "f", false,
		"Gray out directories whose files have not been touched for a long time (implies --modtime)")
	flags.StringVarP(&opts.save, "save", "s", "", "Write the plot and viewer into a directory under DIR")
	flags.StringVarP(&opts.saveAndHost, "save-and-host", "H", "", "Like --save, then serve the plot locally")
	flags.IntVar(&opts.port, "port", 8000, "Port of the preview server used by --save-and-host")
	flags.StringVar(&opts.dataDir, "data-dir", filepath.Join(os.TempDir(), "dv"),
		"Directory for plots written without --save")
	flags.BoolVar(&opts.noCompress, "no-compress", false, "Write plain JSON instead of gzip")
	flags.IntVarP(&opts.top, "top", "t", 10, "Number of largest directories to list after the scan")
	flags.DurationVar(&opts.scan.StallTimeout, "stall-timeout", dirviz.DefaultStallTimeout,
		"Give up on scan workers silent for this long (negative waits forever)")
	flags.DurationVar(&opts.scan.ProgressInterval, "progress-interval", dirviz.DefaultProgressInterval,
		"Interval between progress updates")
	flags.StringVar(&opts.configFile, "config", "", "YAML file with flag defaults")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output")

	return cmd
}
