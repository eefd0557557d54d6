package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/typegen/internal/cli/ui"
	"github.com/conduit-lang/typegen/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var (
		out   string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the metadata or config changes",
		Long: `Generate once, then watch the metadata file and typegen.yml and
regenerate after every change.

A failed pass is reported and the previous output is left in place; the
watcher keeps running until interrupted.

Examples:
  typegen watch
  typegen watch --out assets/js/schemas.ts --delay 250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			loop := &watchLoop{cmd: cmd, session: s, out: out, stdout: cmd.OutOrStdout()}
			loop.rebuild(nil)

			files := []string{s.cfg.MetadataPath()}
			if s.cfg.File != "" {
				files = append(files, s.cfg.File)
			}
			fw, err := watch.NewFileWatcher(files, loop.rebuild, watch.WithLogger(s.logger), watch.WithDelay(delay))
			if err != nil {
				return err
			}
			if err := fw.Start(); err != nil {
				return err
			}
			defer fw.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stdout := cmd.OutOrStdout()
			banner := color.New(color.FgCyan, color.Bold)
			fmt.Fprintln(stdout)
			banner.Fprintln(stdout, "👀 typegen watch")
			for _, f := range files {
				fmt.Fprintf(stdout, "   Watching: %s\n", f)
			}
			fmt.Fprintln(stdout)
			color.New(color.FgYellow).Fprintln(stdout, "⌨️  Press Ctrl+C to stop")

			<-ctx.Done()

			fmt.Fprintln(stdout, "\nShutting down...")
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (overrides output in typegen.yml)")
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "How long to collect changes before regenerating")

	return cmd
}

// watchLoop regenerates on every change batch. Passes never overlap.
type watchLoop struct {
	mu      sync.Mutex
	cmd     *cobra.Command
	session *session
	out     string
	stdout  io.Writer
}

func (w *watchLoop) rebuild(changed []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.session
	if s.cfg.File != "" && containsPath(changed, s.cfg.File) {
		next, err := newSession(w.cmd)
		if err != nil {
			// already reported; keep the previous configuration
			return nil
		}
		if next.cfg.MetadataPath() != s.cfg.MetadataPath() {
			next.logger.Warn("metadata path changed", zap.String("watching", s.cfg.MetadataPath()))
			fmt.Fprint(s.errOut, ui.Info(
				fmt.Sprintf("metadata moved to %s; restart watch to follow it", next.cfg.MetadataPath()),
				s.noColor))
		}
		w.session, s = next, next
	}

	dest := s.cfg.OutputPath()
	if w.out != "" {
		dest = w.out
	}

	res, err := s.generate(dest, w.stdout)
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			ui.WriteError(s.errOut, ui.ErrorOptions{
				Level:   ui.ErrorLevelError,
				Context: "generation failed",
				Problem: err.Error(),
				NoColor: s.noColor,
			})
		}
		return nil
	}

	ui.WriteSuccess(w.stdout, summary(res, dest), s.noColor)
	return nil
}

func containsPath(paths []string, target string) bool {
	abs, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	for _, p := range paths {
		if p == abs {
			return true
		}
	}
	return false
}
