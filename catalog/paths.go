package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Underscoreify converts a camel-cased name to the underscored form used for
// file names: "topSites" becomes "top_sites". Every ASCII capital letter is
// lowercased and prefixed with an underscore.
func Underscoreify(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Camelize reverses Underscoreify for a file base name: "top_sites" becomes
// "topSites". Any extension is dropped.
func Camelize(base string) string {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	b.Grow(len(base))
	upper := false
	for _, r := range base {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// namespacePath maps "devtools.inspectedWindow" to "devtools/inspected_window".
func namespacePath(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = Underscoreify(p)
	}
	return filepath.Join(parts...)
}

// DefinitionPath returns the first existing definition file for a namespace,
// trying each sub-API in order and, within it, each extension in order.
func (c *Catalog) DefinitionPath(name string) (string, bool) {
	rel := namespacePath(name)
	for _, sub := range c.cfg.SubAPIs {
		for _, ext := range c.cfg.Extensions {
			path := filepath.Join(c.cfg.APIRoot, sub, rel) + ext
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}
