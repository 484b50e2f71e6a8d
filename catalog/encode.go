package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/errors"
)

// OutputOptions controls how a catalog is written.
type OutputOptions struct {
	Format string // am.FormatJSON or am.FormatYAML
	Indent int    // spaces per level; 0 writes compact JSON
}

// OutputOptionsFrom returns the output options of a configuration.
func OutputOptionsFrom(cfg am.OutputConfig) OutputOptions {
	return OutputOptions{Format: cfg.Format, Indent: cfg.Indent}
}

// Encode writes namespaces to w.
func Encode(w io.Writer, namespaces []*Namespace, opts OutputOptions) error {
	if namespaces == nil {
		namespaces = []*Namespace{}
	}
	data, err := json.Marshal(namespaces)
	if err != nil {
		return errors.Wrap(err, "failed to encode catalog")
	}

	switch opts.Format {
	case "", am.FormatJSON:
		if opts.Indent > 0 {
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", strings.Repeat(" ", opts.Indent)); err != nil {
				return errors.Wrap(err, "failed to indent catalog")
			}
			data = buf.Bytes()
		}
		if _, err := w.Write(data); err != nil {
			return errors.Wrap(err, "failed to write catalog")
		}
		return nil
	case am.FormatYAML:
		return encodeYAML(w, data, opts.Indent)
	}
	return errors.Newf("unsupported output format %q", opts.Format)
}

// encodeYAML re-encodes JSON as block-style YAML, keeping key order.
func encodeYAML(w io.Writer, data []byte, indent int) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return errors.Wrap(err, "failed to convert catalog to YAML")
	}
	resetStyle(&node)

	enc := yaml.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(&node); err != nil {
		return errors.Wrap(err, "failed to write catalog")
	}
	return enc.Close()
}

// resetStyle drops the flow and quoting styles inherited from JSON.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		resetStyle(child)
	}
}

// Save writes namespaces to path, replacing it atomically.
func Save(path string, namespaces []*Namespace, opts OutputOptions) error {
	var buf bytes.Buffer
	if err := Encode(&buf, namespaces, opts); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to set permissions on %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

// decode parses an encoded catalog into generic values, one per namespace.
func decode(data []byte, format string) ([]interface{}, error) {
	var out []interface{}
	switch format {
	case am.FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML catalog")
		}
	default:
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON catalog")
		}
	}
	return out, nil
}
