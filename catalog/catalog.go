// Package catalog assembles the API catalog: it resolves namespace names to
// definition files, converts IDL definitions, attaches manifest metadata and
// writes or verifies the aggregate catalog file.
package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/convert"
	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

// Catalog reads definitions below one API root. It is safe for concurrent use.
type Catalog struct {
	cfg  am.CatalogConfig
	conv *convert.Converter
	log  *zap.SugaredLogger

	mu        sync.Mutex
	manifests map[string]manifest
	presets   map[string][]string
}

// New returns a Catalog for cfg. A nil log discards log output.
func New(cfg am.CatalogConfig, log *zap.SugaredLogger) *Catalog {
	log = logger.OrNop(log)
	if len(cfg.SubAPIs) == 0 {
		cfg.SubAPIs = am.DefaultSubAPIs
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = am.DefaultExtensions
	}
	if cfg.ManifestFile == "" {
		cfg.ManifestFile = am.DefaultManifestFile
	}
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = am.DefaultPreset
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Catalog{
		cfg:       cfg,
		conv:      convert.New(log.Named("convert")),
		log:       log,
		manifests: make(map[string]manifest),
	}
}

// Root returns the API root directory.
func (c *Catalog) Root() string {
	return c.cfg.APIRoot
}

// Filter selects the namespaces of a build: an explicit list, or else a
// preset name, or else the default preset.
type Filter struct {
	Preset     string
	Namespaces []string
}

// Presets returns all preset definitions: those of the presets file,
// overridden by those in the configuration.
func (c *Catalog) Presets() (map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.presets != nil {
		return c.presets, nil
	}

	presets := make(map[string][]string)
	if c.cfg.PresetsFile != "" {
		if err := readJSONC(c.cfg.PresetsFile, &presets); err != nil {
			return nil, errors.Wrap(err, "failed to load presets file")
		}
	}
	for name, namespaces := range c.cfg.Presets {
		presets[name] = namespaces
	}
	c.presets = presets
	return presets, nil
}

// PresetNames returns the sorted preset names.
func (c *Catalog) PresetNames() ([]string, error) {
	presets, err := c.Presets()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the namespaces selected by f.
func (c *Catalog) Resolve(f Filter) ([]string, error) {
	if len(f.Namespaces) > 0 {
		return f.Namespaces, nil
	}
	name := f.Preset
	if name == "" {
		name = c.cfg.DefaultPreset
	}
	presets, err := c.Presets()
	if err != nil {
		return nil, err
	}
	namespaces, ok := presets[name]
	if !ok {
		known, _ := c.PresetNames()
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("preset %q is not defined", name), errors.ErrUnknownPreset),
			"known presets: %v", known)
	}
	return namespaces, nil
}

// Definitions loads, converts and annotates every namespace selected by f.
// Up to the configured number of workers build namespaces concurrently; the
// result follows the filter order regardless. The first failure cancels the
// remaining work.
func (c *Catalog) Definitions(ctx context.Context, f Filter) ([]*Namespace, error) {
	start := time.Now()
	names, err := c.Resolve(f)
	if err != nil {
		return nil, err
	}

	results := make([]Definition, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			def, err := c.Definition(name)
			if err != nil {
				return err
			}
			if err := c.AttachMeta(def, name); err != nil {
				return errors.Wrapf(err, "failed to attach metadata to %s", name)
			}
			results[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*Namespace
	for _, def := range results {
		all = append(all, def...)
	}

	c.log.Infow("Built catalog",
		logger.FieldPreset, f.Preset,
		logger.FieldCount, len(all),
		logger.FieldWorkers, c.cfg.Workers,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return all, nil
}
