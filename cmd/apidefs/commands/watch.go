package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/watch"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		filter filterFlags
		output outputFlags
		hook   string
		sync   bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the catalog whenever definitions change",
		Long: `Build the catalog, then rebuild it each time a definition or manifest
below the API root changes. Rapid changes are batched (watch.debounce_ms).

After each successful rebuild the hook command runs, if configured. The
changed files are passed in $APIDEFS_CHANGED, shell-quoted.

Examples:
  apidefs watch
  apidefs watch --hook 'make -C extension reload'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("hook") {
				cfg.Watch.Hook = hook
			}
			dest, opts := output.resolve(cfg)
			rep := g.reporter(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rebuild := func(ctx context.Context, changed []string) error {
				if len(changed) > 0 {
					rep.Stage("rebuild", fmt.Sprintf("%d files changed", len(changed)))
				}
				summary, defs, err := buildCatalog(ctx, cfg, filter.filter(), dest, opts)
				if err != nil {
					rep.Error("rebuild", err)
					return err
				}
				if sync {
					result, err := syncStore(ctx, cfg, defs, false)
					if err != nil {
						rep.Error("sync", err)
						return err
					}
					summary.Changed = result.Changed
				}
				rep.Built(*summary)
				return nil
			}

			// A broken definition at startup should not stop the watcher
			if err := rebuild(ctx, nil); err != nil {
				logger.Warnw("Initial build failed", logger.FieldError, err)
			}

			w, err := watch.New(watch.Options{
				Root:       cfg.Catalog.APIRoot,
				Extensions: cfg.Catalog.Extensions,
				Debounce:   time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
				Hook:       cfg.Watch.Hook,
				Ignore:     []string{dest},
				Rebuild:    rebuild,
				Log:        logger.ComponentLogger("watch"),
			})
			if err != nil {
				return err
			}
			defer w.Close()

			rep.Info(fmt.Sprintf("Watching %s (Ctrl-C to stop)", cfg.Catalog.APIRoot))
			return w.Run(ctx)
		},
	}
	filter.register(cmd)
	output.register(cmd, true)
	cmd.Flags().StringVar(&hook, "hook", "", "Command to run after each rebuild (overrides watch.hook)")
	cmd.Flags().BoolVar(&sync, "sync", false, "Also store namespace snapshots in the database")
	return cmd
}
