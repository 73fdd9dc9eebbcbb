package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idelchi/dirviz/internal/dirviz"
	"github.com/idelchi/dirviz/internal/metrics"
	"github.com/idelchi/dirviz/internal/output"
	"github.com/idelchi/dirviz/internal/web"
)

// newLogger builds a console logger on w. Only warnings and errors are shown
// unless debug is set.
func newLogger(debug bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logic(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	log := newLogger(opts.debug, stderr)
	defer func() { _ = log.Sync() }()

	m := metrics.New()

	opts.scan.Logger = log
	opts.scan.Metrics = m

	enableProgress := !opts.debug && isTerminal(stderr)

	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	scan, err := dirviz.Run(ctx, opts.scan, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	capacity, err := output.Capacity(scan.Meta.DriveLetter + scan.Meta.ScannedDir)
	if err != nil {
		log.Warn("filesystem capacity unavailable", zap.Error(err))
	}

	token := output.RootToken(scan.Meta.DriveLetter, scan.Meta.ScannedDir)
	if opts.unique {
		token = output.UniqueToken()
	}

	dest := output.Destination{
		SaveDir:  opts.save,
		DataDir:  opts.dataDir,
		Compress: !opts.noCompress,
	}

	if opts.save != "" {
		dest.Assets = web.Assets()
	}

	artifact, err := output.Write(output.NewDocument(scan, capacity), token, dest)
	if err != nil {
		return err
	}

	if err := PrintSummary(scan, opts.top, stdout); err != nil {
		return err
	}

	switch {
	case opts.host():
		fmt.Fprintf(stdout, "\nServing plot at http://localhost:%d/ [Ctrl+C to stop]\n", opts.port)

		handler := web.Handler(artifact.SiteDir, artifact.Compressed, m.Registry)

		return web.Serve(ctx, opts.port, handler, log)
	case artifact.SiteDir != "":
		fmt.Fprintf(stdout, "\nYour plot can be found at:\n%s\n", artifact.SiteDir)
	default:
		fmt.Fprintf(stdout, "\nScan data written to:\n%s\n", artifact.Path)
	}

	return nil
}
