package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dhamidi/markup/codebase"
	"github.com/dhamidi/markup/parser"
)

type checkStyles struct {
	path lipgloss.Style
	kind lipgloss.Style
	ok   lipgloss.Style
}

func newCheckStyles(color bool) checkStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return checkStyles{plain, plain, plain}
	}
	return checkStyles{
		path: lipgloss.NewStyle().Bold(true),
		kind: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
	}
}

func newCheckCmd(c *cli) *cobra.Command {
	var watch bool
	var color bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report parse errors in markup files",
		Long: `Parse every markup file in the given files and directories and
report the first error in each as file:line:column: kind: message.

Directories are searched recursively for the configured extensions,
skipping hidden directories. The command fails if any file has errors.

With --watch, the given paths are polled and files are re-checked when
they change, until interrupted. A file argument watches only that file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			if !cmd.Flags().Changed("color") {
				color = c.cfg.Output.Color
			}
			styles := newCheckStyles(color)
			out := cmd.OutOrStdout()

			var codebases []*codebase.Codebase
			broken, total := 0, 0
			for _, path := range args {
				cb, err := c.scanPath(path)
				if err != nil {
					return err
				}
				codebases = append(codebases, cb)
				total += len(cb.Files())
				for _, f := range cb.Broken() {
					broken++
					printParseError(out, styles, f)
				}
			}

			if watch {
				// Prime before the summary so edits made after it are reported.
				watchers := c.newWatchers(out, styles, codebases)
				if broken > 0 {
					fmt.Fprintf(out, "%d of %d files have errors\n", broken, total)
				} else {
					fmt.Fprintln(out, styles.ok.Render(fmt.Sprintf("%d files ok", total)))
				}
				return c.watch(cmd.Context(), watchers)
			}

			if broken > 0 {
				return fmt.Errorf("%d of %d files have errors", broken, total)
			}
			fmt.Fprintln(out, styles.ok.Render(fmt.Sprintf("%d files ok", total)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-check files when they change")
	cmd.Flags().BoolVar(&color, "color", false, "colorize output")

	return cmd
}

// scanPath returns a codebase holding path: every markup file below it
// for a directory, or just the file itself.
func (c *cli) scanPath(path string) (*codebase.Codebase, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}
	if info.IsDir() {
		cb := codebase.New(path, c.codebaseOptions()...)
		if err := cb.ScanAll(); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		return cb, nil
	}
	path = filepath.Clean(path)
	opts := append(c.codebaseOptions(), codebase.WithFiles(path))
	cb := codebase.New(filepath.Dir(path), opts...)
	if err := cb.ScanFile(path); err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}
	return cb, nil
}

// newWatchers returns one primed watcher per codebase. Files already
// reported are not printed again; later changes go to out.
func (c *cli) newWatchers(out io.Writer, styles checkStyles, codebases []*codebase.Codebase) []*codebase.FileWatcher {
	var watchers []*codebase.FileWatcher
	for _, cb := range codebases {
		w := codebase.NewFileWatcher(cb, c.cfg.Workspace.PollInterval.Duration, nil)
		w.Scan()
		w.OnChange(func(ch codebase.Change) {
			switch {
			case ch.Removed:
				log.Infof("%s removed", ch.Path)
			case ch.File.ParseErr != nil:
				printParseError(out, styles, ch.File)
			default:
				fmt.Fprintf(out, "%s: %s\n", styles.path.Render(ch.Path), styles.ok.Render("ok"))
			}
		})
		watchers = append(watchers, w)
	}
	return watchers
}

func (c *cli) watch(ctx context.Context, watchers []*codebase.FileWatcher) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	for _, w := range watchers {
		w.Start(ctx)
	}
	log.Noticef("watching %d paths every %s", len(watchers), c.cfg.Workspace.PollInterval.Duration)

	<-ctx.Done()
	return nil
}

func printParseError(out io.Writer, styles checkStyles, f *codebase.FileInfo) {
	var perr *parser.Error
	if !errors.As(f.ParseErr, &perr) {
		fmt.Fprintf(out, "%s: %s\n", styles.path.Render(f.Path), f.ParseErr)
		return
	}
	fmt.Fprintf(out, "%s:%d:%d: %s: %s\n",
		styles.path.Render(f.Path), perr.Pos.Line, perr.Pos.Column,
		styles.kind.Render(perr.Kind.String()), perr.Detail())
}
