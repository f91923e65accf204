package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shapestone/yamlref/pkg/semantic"
	"github.com/shapestone/yamlref/pkg/yaml"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch file",
		Short: "Resolve a file again every time it changes",
		Long: `Resolve a file, then watch it and resolve it again after every change.
Every run prints a one line summary. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, args[0], a.cfg, a.out, a.logger)
		},
	}
}

// runWatch resolves path once and then after every write to it, until ctx is
// done. The directory is watched rather than the file so that editors that
// replace the file on save are followed.
func runWatch(ctx context.Context, path string, cfg semantic.Config, out io.Writer, logger log.Logger) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	level.Info(logger).Log("msg", "watching", "path", path)

	resolveFile(path, cfg, out, logger)
	for {
		select {
		case <-ctx.Done():
			level.Info(logger).Log("msg", "watch stopped", "path", path)
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			level.Debug(logger).Log("msg", "file changed", "path", path, "op", ev.Op.String())
			resolveFile(path, cfg, out, logger)
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			level.Error(logger).Log("msg", "watcher error", "err", err)
		}
	}
}

// resolveFile runs a fresh analysis of path and prints a summary.
func resolveFile(path string, cfg semantic.Config, out io.Writer, logger log.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", path, err)
		return
	}
	res, err := yaml.LoadResolved(string(data), yaml.WithConfig(cfg), yaml.WithLogger(logger))
	switch {
	case res == nil:
		fmt.Fprintf(out, "%s: %v\n", path, err)
	case err != nil:
		fmt.Fprintf(out, "%s: %d of %d documents resolved: %v\n", path,
			res.Statistics.Documents-res.Statistics.FailedDocuments, res.Statistics.Documents, err)
	default:
		fmt.Fprintf(out, "%s: %d documents resolved, %d aliases, %d warnings\n", path,
			res.Statistics.Documents, res.Statistics.AliasesResolved, len(res.Warnings))
	}
}
