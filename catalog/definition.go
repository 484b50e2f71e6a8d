package catalog

import (
	"encoding/json"
	"path/filepath"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/idl"
	"github.com/teranos/apidefs/logger"
	"github.com/teranos/apidefs/schema"
)

// Metadata keys attached from the features manifest.
const (
	KeyContentScript = "content_script"
	KeyDependencies  = "dependencies"
)

// Namespace is one namespace of the catalog. Namespaces converted from IDL
// keep their typed schema; namespaces read from JSON definitions are kept
// verbatim as decoded JSON.
type Namespace struct {
	typed *schema.Namespace
	raw   map[string]interface{}
}

// FromSchema wraps a converted namespace.
func FromSchema(ns *schema.Namespace) *Namespace {
	return &Namespace{typed: ns}
}

// Definition is the content of one definition file.
type Definition []*Namespace

// Name returns the namespace name.
func (n *Namespace) Name() string {
	if n.typed != nil {
		return n.typed.Namespace
	}
	name, _ := n.raw["namespace"].(string)
	return name
}

// MarshalJSON encodes the namespace as it appears in the catalog.
func (n *Namespace) MarshalJSON() ([]byte, error) {
	if n.typed != nil {
		return json.Marshal(n.typed)
	}
	return json.Marshal(n.raw)
}

// FunctionNames lists the names of the namespace's functions in order.
func (n *Namespace) FunctionNames() []string {
	var names []string
	if n.typed != nil {
		for _, fn := range n.typed.Functions {
			names = append(names, fn.Name)
		}
		return names
	}
	fns, _ := n.raw["functions"].([]interface{})
	for _, fn := range fns {
		if m, ok := fn.(map[string]interface{}); ok {
			if name, ok := m["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// applyMeta sets content_script and dependencies from entry on the namespace
// itself, or on its function fn when fn is not empty.
func (n *Namespace) applyMeta(fn string, entry *ManifestEntry) {
	contentScript := entry.ContentScript()
	deps := entry.Dependencies()

	if n.typed != nil {
		if fn == "" {
			if contentScript {
				n.typed.ContentScript = schema.Bool(true)
			}
			if len(deps) > 0 {
				n.typed.Dependencies = deps
			}
			return
		}
		for _, f := range n.typed.Functions {
			if f.Name != fn {
				continue
			}
			if contentScript {
				f.ContentScript = schema.Bool(true)
			}
			if len(deps) > 0 {
				f.Dependencies = deps
			}
		}
		return
	}

	targets := []map[string]interface{}{n.raw}
	if fn != "" {
		targets = nil
		fns, _ := n.raw["functions"].([]interface{})
		for _, f := range fns {
			if m, ok := f.(map[string]interface{}); ok && m["name"] == fn {
				targets = append(targets, m)
			}
		}
	}
	for _, m := range targets {
		if contentScript {
			m[KeyContentScript] = true
		}
		if len(deps) > 0 {
			list := make([]interface{}, len(deps))
			for i, d := range deps {
				list[i] = d
			}
			m[KeyDependencies] = list
		}
	}
}

// Definition loads the definition of a namespace: JSON definitions are read
// verbatim, IDL definitions are parsed and converted.
func (c *Catalog) Definition(name string) (Definition, error) {
	path, ok := c.DefinitionPath(name)
	if !ok {
		return nil, errors.WithHintf(
			errors.NewNotFoundError("no definition for namespace %s", name),
			"looked for %s under %v in %s", namespacePath(name), c.cfg.SubAPIs, c.cfg.APIRoot)
	}
	log := logger.ChildLogger(c.log, logger.FieldNamespace, name)
	log.Debugw("Loading definition", logger.FieldFile, path)

	if filepath.Ext(path) == ".json" {
		var raw []map[string]interface{}
		if err := readJSONC(path, &raw); err != nil {
			return nil, err
		}
		def := make(Definition, 0, len(raw))
		for _, m := range raw {
			def = append(def, &Namespace{raw: m})
		}
		return def, nil
	}

	doc, err := idl.ParseFile(path)
	if err != nil {
		return nil, err
	}
	converted, err := c.conv.Convert(name, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s", path)
	}
	def := make(Definition, 0, len(converted))
	for _, ns := range converted {
		def = append(def, &Namespace{typed: ns})
	}
	return def, nil
}

// AttachMeta copies manifest metadata onto def: the entry for name onto each
// namespace, and the entry for "<name>.<function>" onto each function.
func (c *Catalog) AttachMeta(def Definition, name string) error {
	for _, ns := range def {
		entry, err := c.ManifestEntry(name)
		if err != nil {
			return err
		}
		if entry != nil {
			ns.applyMeta("", entry)
		}
		for _, fn := range ns.FunctionNames() {
			entry, err := c.ManifestEntry(name + "." + fn)
			if err != nil {
				return err
			}
			if entry != nil {
				ns.applyMeta(fn, entry)
			}
		}
	}
	return nil
}
