package catalog

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/tailscale/hujson"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

// ContextContentScript marks a feature as available to content scripts.
const ContextContentScript = "content_script"

// Feature is one entry of a features manifest.
type Feature struct {
	Channel        string      `json:"channel,omitempty"`
	Contexts       stringOrAll `json:"contexts,omitempty"`
	Dependencies   []string    `json:"dependencies,omitempty"`
	ExtensionTypes stringOrAll `json:"extension_types,omitempty"`
}

// ManifestEntry is the manifest entry for a namespace or function. Chromium
// writes either a single feature or a list of alternative features; both are
// held as Alternatives.
type ManifestEntry struct {
	Alternatives []Feature
}

// UnmarshalJSON accepts an object or an array of objects.
func (m *ManifestEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &m.Alternatives)
	}
	var f Feature
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	m.Alternatives = []Feature{f}
	return nil
}

// ContentScript reports whether any alternative lists the content_script context.
func (m *ManifestEntry) ContentScript() bool {
	for _, f := range m.Alternatives {
		if slices.Contains(f.Contexts, ContextContentScript) {
			return true
		}
	}
	return false
}

// Dependencies returns the dependencies of all alternatives, first occurrence order.
func (m *ManifestEntry) Dependencies() []string {
	var deps []string
	for _, f := range m.Alternatives {
		for _, d := range f.Dependencies {
			if !slices.Contains(deps, d) {
				deps = append(deps, d)
			}
		}
	}
	return deps
}

// Channel returns the channel of the first alternative that names one.
func (m *ManifestEntry) Channel() string {
	for _, f := range m.Alternatives {
		if f.Channel != "" {
			return f.Channel
		}
	}
	return ""
}

// stringOrAll decodes a list of strings or a single string such as "all".
type stringOrAll []string

func (s *stringOrAll) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type manifest map[string]*ManifestEntry

// ManifestEntry returns the manifest entry for name, checking the sub-APIs in
// order. It returns nil when no manifest mentions name.
func (c *Catalog) ManifestEntry(name string) (*ManifestEntry, error) {
	for _, sub := range c.cfg.SubAPIs {
		m, err := c.manifest(sub)
		if err != nil {
			return nil, err
		}
		if entry, ok := m[name]; ok && entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

// manifest loads and caches the features manifest of one sub-API. A missing
// manifest is treated as empty.
func (c *Catalog) manifest(sub string) (manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.manifests[sub]; ok {
		return m, nil
	}

	path := filepath.Join(c.cfg.APIRoot, sub, c.cfg.ManifestFile)
	m := manifest{}
	if err := readJSONC(path, &m); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to load manifest %s", path)
		}
		c.log.Debugw("No manifest", logger.FieldPath, path)
	}
	c.manifests[sub] = m
	return m, nil
}

// readJSONC decodes a JSON file that may contain comments and trailing commas.
func readJSONC(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return errors.Wrapf(err, "invalid JSON in %s", path)
	}
	if err := json.Unmarshal(std, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}
