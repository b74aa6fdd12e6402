package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/structkit/s101ci/internal/manifest"
)

// watchDebounce batches rapid build-output changes into one re-run.
const watchDebounce = 500 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run analysis whenever module build outputs change",
		Long: `Run the analysis once, then keep watching the known module build
outputs and re-run whenever they change. Runs whose inputs are unchanged are
skipped as usual. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
}

func runWatch(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	index := cfg.Modules
	if len(index) == 0 {
		index, err = manifest.DiscoverModules(cfg.ProjectDir)
		if err != nil {
			return err
		}
	}
	if len(index) == 0 {
		return fmt.Errorf("no module build outputs to watch under %s", cfg.ProjectDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, outputs := range index {
		for _, dir := range outputs {
			if err := watchDir(watcher, dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	execute := func() {
		result, err := cmdCtx.Runner.Run(ctx, runContext(cfg), runOptions(cfg, false))
		switch {
		case err != nil:
			logger.Error("run failed", slog.String("error", err.Error()))
		case result.Skipped:
			logger.Info("inputs unchanged, run skipped")
		default:
			logger.Info("run finished", slog.String("label", string(result.Label)))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d module(s), press Ctrl+C to stop\n", len(index))
	execute()

	trigger := make(chan struct{}, 1)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return watchLoop(egctx, watcher, trigger, logger)
	})
	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-trigger:
				execute()
			}
		}
	})

	return eg.Wait()
}

// watchDir recursively adds a directory tree to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// watchLoop debounces filesystem events into trigger signals.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger chan<- struct{}, logger *slog.Logger) error {
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := filepath.Base(event.Name)
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				logger.Info("change detected", slog.String("file", name))
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
