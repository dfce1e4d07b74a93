package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/watcher"
)

type locateJSON struct {
	Origin     string   `json:"origin"`
	Root       string   `json:"root,omitempty"`
	Diagnostic string   `json:"diagnostic,omitempty"`
	External   string   `json:"external_root"`
	Bundled    string   `json:"bundled_root"`
	Present    []string `json:"present,omitempty"`
}

// present lists which optional assets the selected root holds.
func present(res assets.Resolution) []string {
	if !res.Found() {
		return nil
	}
	var names []string
	for _, name := range []string{
		assets.ShardMapFile,
		assets.MissalFile,
		assets.DevotionalFile,
		assets.RosaryFile,
		assets.ConfessionFile,
		assets.ManifestFile,
	} {
		if res.Store.Exists(name) {
			names = append(names, name)
		}
	}
	return names
}

func newLocateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Show which asset root is selected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := e.locator().Resolve()
			result := locateJSON{
				Origin:     res.Origin.String(),
				Root:       res.Root,
				Diagnostic: res.Diagnostic,
				External:   e.cfg.Assets.ExternalRoot,
				Bundled:    e.cfg.Assets.BundledRoot,
				Present:    present(res),
			}

			if e.json {
				if err := e.out(cmd).JSON(result); err != nil {
					return err
				}
			} else {
				w := e.out(cmd)
				w.KeyValue("External", result.External)
				w.KeyValue("Bundled", result.Bundled)
				w.KeyValue("Origin", result.Origin)
				if res.Found() {
					w.KeyValue("Root", result.Root)
					for _, name := range result.Present {
						w.KeyValue("Has", name)
					}
				}
				if result.Diagnostic != "" {
					w.Warning(result.Diagnostic)
				}
			}
			if !res.Found() {
				return notFound(res)
			}
			return nil
		},
	}
}

func newWatchCmd(e *env) *cobra.Command {
	var polling bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve asset roots when they change",
		Long: `Watch both asset roots and re-run root selection after every change,
for example when removable media is mounted or unmounted. Origin changes
are logged. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debounce, err := e.cfg.WatchDebounce()
			if err != nil {
				return err
			}
			opts := watcher.DefaultOptions()
			opts.DebounceWindow = debounce
			opts.ForcePolling = polling

			rw, err := watcher.NewRootWatcher(
				[]string{e.cfg.Assets.ExternalRoot, e.cfg.Assets.BundledRoot}, opts)
			if err != nil {
				return err
			}
			rw.WithLogger(e.log())
			return runWatch(cmd.Context(), e, rw)
		},
	}

	cmd.Flags().BoolVar(&polling, "poll", false, "Poll instead of using filesystem notifications")

	return cmd
}

// runWatch resolves once, then again after each batch of changes, until ctx
// is done.
func runWatch(ctx context.Context, e *env, rw *watcher.RootWatcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := e.log()
	loc := e.locator()
	current := loc.Resolve()
	logger.Info("watching asset roots",
		slog.Any("roots", rw.Roots()),
		slog.String("mode", rw.Mode()),
		slog.String("origin", current.Origin.String()),
		slog.String("root", current.Root))

	done := make(chan error, 1)
	go func() { done <- rw.Start(ctx) }()

	for {
		select {
		case <-ctx.Done():
			_ = rw.Stop()
			return nil
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case err, ok := <-rw.Errors():
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.String("error", err.Error()))
		case batch, ok := <-rw.Changes():
			if !ok {
				return nil
			}
			next := loc.Resolve()
			if next.Origin != current.Origin || next.Root != current.Root {
				logger.Info("asset origin changed",
					slog.String("from", current.Origin.String()),
					slog.String("to", next.Origin.String()),
					slog.String("root", next.Root),
					slog.String("diagnostic", next.Diagnostic))
			} else {
				logger.Debug("assets changed, origin unchanged",
					slog.Int("events", len(batch)),
					slog.String("origin", next.Origin.String()))
			}
			current = next
		}
	}
}
