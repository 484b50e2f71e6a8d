package catalog

import (
	"bytes"
	"context"
	"os"
	"reflect"
	"sort"

	"github.com/teranos/apidefs/errors"
)

// CheckResult holds the result of comparing a regenerated catalog with the
// catalog file on disk.
type CheckResult struct {
	UpToDate bool
	Missing  bool     // the catalog file does not exist
	Added    []string // namespaces generated but absent from the file
	Removed  []string // namespaces in the file but no longer generated
	Changed  []string // namespaces whose content differs
	// Reordered is set when the namespaces appear in a different order
	Reordered bool
}

// Check regenerates the catalog selected by f and compares it with the file
// at path. The comparison is semantic: formatting and key order are ignored.
func (c *Catalog) Check(ctx context.Context, f Filter, path string, opts OutputOptions) (*CheckResult, error) {
	namespaces, err := c.Definitions(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, namespaces, opts); err != nil {
		return nil, err
	}
	generated, err := decode(buf.Bytes(), opts.Format)
	if err != nil {
		return nil, err
	}

	existingData, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		result := &CheckResult{Missing: true}
		for _, ns := range namespaces {
			result.Added = append(result.Added, ns.Name())
		}
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	existing, err := decode(existingData, opts.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "existing catalog %s", path)
	}

	return compare(existing, generated), nil
}

// compare diffs two decoded catalogs namespace by namespace.
func compare(existing, generated []interface{}) *CheckResult {
	before := indexByNamespace(existing)
	after := indexByNamespace(generated)
	result := &CheckResult{}

	for name, gen := range after {
		old, ok := before[name]
		switch {
		case !ok:
			result.Added = append(result.Added, name)
		case !reflect.DeepEqual(old, gen):
			result.Changed = append(result.Changed, name)
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			result.Removed = append(result.Removed, name)
		}
	}
	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.Changed)

	result.Reordered = namespaceOrder(existing) != namespaceOrder(generated)
	result.UpToDate = len(result.Added) == 0 && len(result.Removed) == 0 && len(result.Changed) == 0 &&
		!result.Reordered
	return result
}

func indexByNamespace(entries []interface{}) map[string]interface{} {
	index := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		index[namespaceOf(e)] = e
	}
	return index
}

func namespaceOf(entry interface{}) string {
	if m, ok := entry.(map[string]interface{}); ok {
		if name, ok := m["namespace"].(string); ok {
			return name
		}
	}
	return ""
}

func namespaceOrder(entries []interface{}) string {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(namespaceOf(e))
		buf.WriteByte(0)
	}
	return buf.String()
}
