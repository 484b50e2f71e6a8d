package am

import (
	"strings"

	"github.com/teranos/apidefs/errors"
)

// Validate checks that the configuration is valid. Every failure is marked
// errors.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Mark(err, errors.ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Catalog.APIRoot == "" {
		return errors.New("catalog.api_root cannot be empty")
	}
	if len(c.Catalog.SubAPIs) == 0 {
		return errors.New("catalog.sub_apis cannot be empty")
	}
	if len(c.Catalog.Extensions) == 0 {
		return errors.New("catalog.extensions cannot be empty")
	}
	for _, ext := range c.Catalog.Extensions {
		if ext != ".json" && ext != ".idl" {
			return errors.WithHint(
				errors.Newf("catalog.extensions: unsupported extension %q", ext),
				"supported extensions are .json and .idl")
		}
	}
	if c.Catalog.ManifestFile == "" {
		return errors.New("catalog.manifest_file cannot be empty")
	}

	// Workers: 0 is invalid per "zero means zero" (nothing would be built)
	if c.Catalog.Workers < 1 {
		return errors.Newf("catalog.workers must be >= 1, got %d", c.Catalog.Workers)
	}

	for name, namespaces := range c.Catalog.Presets {
		for _, ns := range namespaces {
			if strings.TrimSpace(ns) == "" {
				return errors.Newf("catalog.presets.%s contains an empty namespace", name)
			}
		}
	}

	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return errors.Newf("output.format must be %q or %q, got %q", FormatJSON, FormatYAML, c.Output.Format)
	}
	if c.Output.Indent < 0 {
		return errors.Newf("output.indent must be >= 0, got %d", c.Output.Indent)
	}

	// Debounce: 0 = rebuild on every event, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
