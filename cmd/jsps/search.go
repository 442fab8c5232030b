package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/internal/debug"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/run"
	"github.com/standardbeagle/jsps/internal/sink"
	"github.com/standardbeagle/jsps/internal/watch"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Run a search definition against the project files",
		ArgsUsage: "<definition.jsps.ts>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Continue past large-run and probe-failure confirmations without asking",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Files tested concurrently (0 = auto)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Also search files matching glob patterns (e.g., --include 'src/**/*.ts')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/fixtures/**')",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Write results as JSON lines",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-run the search whenever the definition file changes",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not report progress on stderr",
			},
		},
		Action: searchAction,
	}
}

func searchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("search requires exactly one definition file", 2)
	}
	defPath := c.Args().First()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s := &searcher{
		cfg:    cfg,
		name:   filepath.Base(defPath),
		out:    c.App.Writer,
		errOut: c.App.ErrWriter,
		format: sink.FormatText,
		quiet:  c.Bool("quiet"),
	}
	if s.errOut == nil {
		s.errOut = os.Stderr
	}
	if c.Bool("json") {
		s.format = sink.FormatJSON
	}
	if cfg.Run.AssumeYes {
		s.confirmer = run.AutoConfirm
	} else {
		s.confirmer = run.NewPrompt(os.Stdin, s.errOut)
	}

	if c.Bool("watch") {
		return s.watch(ctx, defPath)
	}

	source, err := os.ReadFile(defPath)
	if err != nil {
		return jspserrors.NewFileError("read", defPath, err)
	}
	return s.search(ctx, string(source))
}

// searcher runs one definition, possibly many times in watch mode
type searcher struct {
	cfg       *config.Config
	name      string
	out       io.Writer
	errOut    io.Writer
	format    sink.Format
	confirmer run.Confirmer
	quiet     bool
}

func (s *searcher) search(ctx context.Context, source string) error {
	writer := sink.NewWriter(s.out, s.cfg.Project.Root, s.format)
	rc := run.NewRunContext(ctx, writer, s.progress(), s.confirmer)

	stats, err := run.FromConfig(s.cfg).Run(rc, s.name, source)
	if !s.quiet {
		// clear the progress line
		fmt.Fprint(s.errOut, "\r\033[K")
	}
	if err != nil {
		if s.format == sink.FormatText {
			fmt.Fprintln(s.errOut, sink.FormatSummary(stats))
		}
		return err
	}
	if werr := writer.Err(); werr != nil {
		return fmt.Errorf("writing results: %w", werr)
	}
	return nil
}

func (s *searcher) progress() run.ProgressFunc {
	if s.quiet {
		return nil
	}
	return func(fraction float64) {
		fmt.Fprintf(s.errOut, "\rsearching... %3.0f%%", fraction*100)
	}
}

// watch re-runs the search each time the definition content changes until
// ctx is cancelled. Run errors are reported and the watch continues.
func (s *searcher) watch(ctx context.Context, defPath string) error {
	delay := time.Duration(s.cfg.Watch.DebounceMs) * time.Millisecond
	w, err := watch.New(defPath, delay, func(ctx context.Context, source string) {
		if err := s.search(ctx, source); err != nil {
			fmt.Fprintf(s.errOut, "Error: %s\n", describeError(err))
		}
		fmt.Fprintf(s.errOut, "watching %s for changes (Ctrl+C to stop)\n", defPath)
	})
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	runs, unchanged := w.Stats()
	debug.LogWatch("watch stopped after %d runs, %d unchanged saves", runs, unchanged)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// describeError renders err for a terminal, adding the definition-level
// guidance carried by load errors
func describeError(err error) string {
	var loadErr *jspserrors.LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message()
		if loadErr.Underlying != nil {
			msg += "\n  " + strings.ReplaceAll(loadErr.Underlying.Error(), "\n", "\n  ")
		}
		return msg
	}
	if errors.Is(err, jspserrors.ErrNoFilesMatched) {
		return err.Error() + " (includeFilePatterns / excludeFilePatterns)"
	}
	return err.Error()
}
