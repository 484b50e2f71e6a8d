package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/catalog"
	"github.com/teranos/apidefs/display"
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/store"
)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	verbosity  int
	jsonLogs   bool
	json       bool
	configFile string
}

// loadConfig loads and validates the configuration, and applies its log theme.
func (g *globalFlags) loadConfig() (*am.Config, error) {
	var (
		cfg *am.Config
		err error
	)
	if g.configFile != "" {
		cfg, err = am.LoadFromFile(g.configFile)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.SetTheme(cfg.Log.Theme)
	return cfg, nil
}

func (g *globalFlags) reporter(cmd *cobra.Command) display.Reporter {
	return display.NewReporter(cmd.OutOrStdout(), display.ShouldOutputJSON(cmd), g.verbosity)
}

func newCatalog(cfg *am.Config) *catalog.Catalog {
	return catalog.New(cfg.Catalog, logger.ComponentLogger("catalog"))
}

// filterFlags selects the namespaces of a command.
type filterFlags struct {
	preset     string
	namespaces []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "Preset to build (default from catalog.default_preset)")
	cmd.Flags().StringSliceVarP(&f.namespaces, "namespace", "n", nil, "Namespaces to build instead of a preset (repeatable)")
}

func (f *filterFlags) filter() catalog.Filter {
	return catalog.Filter{Preset: f.preset, Namespaces: f.namespaces}
}

// outputFlags override the [output] configuration.
type outputFlags struct {
	dest   string
	format string
	indent int
}

func (o *outputFlags) register(cmd *cobra.Command, withDest bool) {
	if withDest {
		cmd.Flags().StringVarP(&o.dest, "output", "o", "", "Catalog file (default from output.dest)")
	}
	cmd.Flags().StringVar(&o.format, "format", "", "Output format: json or yaml (default from output.format)")
	cmd.Flags().IntVar(&o.indent, "indent", -1, "Spaces per indentation level (default from output.indent)")
}

func (o *outputFlags) resolve(cfg *am.Config) (string, catalog.OutputOptions) {
	dest := cfg.Output.Dest
	if o.dest != "" {
		dest = o.dest
	}
	opts := catalog.OutputOptionsFrom(cfg.Output)
	if o.format != "" {
		opts.Format = o.format
	}
	if o.indent >= 0 {
		opts.Indent = o.indent
	}
	return dest, opts
}

// buildCatalog generates the catalog selected by f and writes it to dest.
func buildCatalog(ctx context.Context, cfg *am.Config, f catalog.Filter, dest string, opts catalog.OutputOptions) (*display.BuildSummary, []*catalog.Namespace, error) {
	start := time.Now()
	defs, err := newCatalog(cfg).Definitions(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if err := catalog.Save(dest, defs, opts); err != nil {
		return nil, nil, err
	}
	return &display.BuildSummary{
		Dest:       dest,
		Namespaces: len(defs),
		DurationMS: time.Since(start).Milliseconds(),
	}, defs, nil
}

// syncStore stores namespace snapshots in the configured database.
func syncStore(ctx context.Context, cfg *am.Config, defs []*catalog.Namespace, prune bool) (*store.SyncResult, error) {
	entries := make([]store.Entry, 0, len(defs))
	for _, ns := range defs {
		data, err := json.Marshal(ns)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", ns.Name())
		}
		entries = append(entries, store.Entry{Namespace: ns.Name(), Definition: data})
	}

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Sync(ctx, entries, prune)
}

func openStore(cfg *am.Config) (*store.Store, error) {
	s, err := store.OpenStore(cfg.Database.Path, logger.ComponentLogger("store"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", cfg.Database.Path)
	}
	return s, nil
}
