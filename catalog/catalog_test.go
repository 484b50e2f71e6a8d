package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/apidefs/am"
	"github.com/teranos/apidefs/errors"
)

func newTestCatalog(t *testing.T, workers int) *Catalog {
	t.Helper()
	return New(am.CatalogConfig{
		APIRoot:     filepath.Join("testdata", "api"),
		PresetsFile: filepath.Join("testdata", "api-names.json"),
		Workers:     workers,
	}, nil)
}

func names(namespaces []*Namespace) []string {
	var out []string
	for _, ns := range namespaces {
		out = append(out, ns.Name())
	}
	return out
}

// generic round-trips a namespace through JSON for assertions on the catalog shape.
func generic(t *testing.T, ns *Namespace) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(ns)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func function(t *testing.T, ns map[string]interface{}, name string) map[string]interface{} {
	t.Helper()
	fns, _ := ns["functions"].([]interface{})
	for _, fn := range fns {
		if m := fn.(map[string]interface{}); m["name"] == name {
			return m
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func TestUnderscoreify(t *testing.T) {
	tests := map[string]string{
		"topSites":        "top_sites",
		"alarms":          "alarms",
		"browserAction":   "browser_action",
		"inspectedWindow": "inspected_window",
		"getURL":          "get_u_r_l",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Underscoreify(in), in)
	}
}

func TestCamelize(t *testing.T) {
	tests := map[string]string{
		"top_sites.idl":        "topSites",
		"browser_action":       "browserAction",
		"inspected_window.idl": "inspectedWindow",
		"alarms.json":          "alarms",
	}
	for in, want := range tests {
		assert.Equal(t, want, Camelize(in), in)
	}
}

func TestDefinitionPath(t *testing.T) {
	c := newTestCatalog(t, 1)
	root := filepath.Join("testdata", "api")

	tests := []struct {
		name string
		want string
	}{
		{"runtime", filepath.Join(root, "common", "runtime.json")},
		{"alarms", filepath.Join(root, "chrome", "alarms.idl")},
		{"browserAction", filepath.Join(root, "chrome", "browser_action.idl")},
		{"devtools.inspectedWindow", filepath.Join(root, "chrome", "devtools", "inspected_window.idl")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.DefinitionPath(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := c.DefinitionPath("missing")
	assert.False(t, ok)
}

func TestDefinitionPathPrefersJSONThenCommon(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"chrome/storage.json", "common/storage.idl", "chrome/storage.idl"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	}
	c := New(am.CatalogConfig{APIRoot: root}, nil)

	got, ok := c.DefinitionPath("storage")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "common", "storage.idl"), got, "sub-API order comes before extension order")
}

func TestManifestEntry(t *testing.T) {
	c := newTestCatalog(t, 1)

	t.Run("single entry in common", func(t *testing.T) {
		entry, err := c.ManifestEntry("runtime")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "stable", entry.Channel())
		assert.Contains(t, entry.Alternatives[0].ExtensionTypes, "extension")
		assert.Contains(t, entry.Alternatives[0].Contexts, "blessed_extension")
		assert.False(t, entry.ContentScript())
	})

	t.Run("common shadows chrome", func(t *testing.T) {
		entry, err := c.ManifestEntry("browserAction")
		require.NoError(t, err)
		assert.Equal(t, []string{"manifest:browser_action"}, entry.Dependencies())
	})

	t.Run("alternatives in chrome", func(t *testing.T) {
		entry, err := c.ManifestEntry("devtools.inspectedWindow")
		require.NoError(t, err)
		require.Len(t, entry.Alternatives, 2)
		assert.Equal(t, []string{"manifest:devtools_page", "permission:devtools"}, entry.Dependencies())
		assert.True(t, entry.ContentScript())
	})

	t.Run("string contexts", func(t *testing.T) {
		entry, err := c.ManifestEntry("browserAction.setIcon")
		require.NoError(t, err)
		assert.Equal(t, []string{"all"}, []string(entry.Alternatives[0].Contexts))
	})

	t.Run("unknown", func(t *testing.T) {
		entry, err := c.ManifestEntry("nope")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestManifestMissingIsEmpty(t *testing.T) {
	c := New(am.CatalogConfig{APIRoot: t.TempDir()}, nil)
	entry, err := c.ManifestEntry("runtime")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestManifestInvalid(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "common"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "common", "_api_features.json"), []byte("{ broken"), 0o644))

	c := New(am.CatalogConfig{APIRoot: root}, nil)
	_, err := c.ManifestEntry("runtime")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_api_features.json")
}

func TestDefinitionJSONPassthrough(t *testing.T) {
	c := newTestCatalog(t, 1)

	def, err := c.Definition("runtime")
	require.NoError(t, err)
	require.Len(t, def, 1)
	assert.Equal(t, "runtime", def[0].Name())
	assert.Nil(t, def[0].typed)

	m := generic(t, def[0])
	assert.Equal(t, "Use the runtime API to retrieve the background page.", m["description"])
	assert.Equal(t, []string{"getURL", "sendMessage"}, def[0].FunctionNames())
}

func TestDefinitionIDL(t *testing.T) {
	c := newTestCatalog(t, 1)

	def, err := c.Definition("alarms")
	require.NoError(t, err)
	require.Len(t, def, 1)

	ns := def[0].typed
	require.NotNil(t, ns)
	assert.Equal(t, "alarms", ns.Namespace)
	assert.Len(t, ns.Types, 2)
	assert.Len(t, ns.Functions, 4)
	assert.Len(t, ns.Events, 1)

	get := ns.Functions[1]
	assert.Equal(t, "get", get.Name)
	assert.Equal(t, "function", get.Parameters[1].Type)
	assert.Equal(t, "Alarm", get.Parameters[1].Parameters[0].Ref)
}

func TestDefinitionDeepNamespace(t *testing.T) {
	c := newTestCatalog(t, 1)

	def, err := c.Definition("devtools.inspectedWindow")
	require.NoError(t, err)
	assert.Equal(t, "devtools.inspectedWindow", def[0].Name())
	assert.Len(t, def[0].typed.Functions, 1)
	assert.Len(t, def[0].typed.Types, 1)
}

func TestDefinitionNotFound(t *testing.T) {
	c := newTestCatalog(t, 1)

	_, err := c.Definition("missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDefinitionsDefaultPreset(t *testing.T) {
	c := newTestCatalog(t, 2)

	defs, err := c.Definitions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alarms", "runtime", "browserAction"}, names(defs))
}

func TestDefinitionsAttachMeta(t *testing.T) {
	c := newTestCatalog(t, 1)
	defs, err := c.Definitions(context.Background(), Filter{})
	require.NoError(t, err)

	alarms := generic(t, defs[0])
	assert.Equal(t, []interface{}{"permission:alarms"}, alarms["dependencies"])
	assert.NotContains(t, alarms, "content_script")

	runtime := generic(t, defs[1])
	assert.Equal(t, true, function(t, runtime, "sendMessage")["content_script"])
	assert.NotContains(t, function(t, runtime, "getURL"), "content_script")
	assert.NotContains(t, runtime, "content_script")

	browserAction := generic(t, defs[2])
	assert.Equal(t, []interface{}{"manifest:browser_action"}, browserAction["dependencies"])
	setIcon := function(t, browserAction, "setIcon")
	assert.NotContains(t, setIcon, "content_script")
	assert.NotContains(t, setIcon, "dependencies")
}

func TestDefinitionsPresetAndList(t *testing.T) {
	c := newTestCatalog(t, 1)

	defs, err := c.Definitions(context.Background(), Filter{Preset: "experimental"})
	require.NoError(t, err)
	require.Equal(t, []string{"devtools.inspectedWindow"}, names(defs))
	ns := defs[0].typed
	require.NotNil(t, ns.ContentScript)
	assert.True(t, *ns.ContentScript)
	assert.Equal(t, []string{"manifest:devtools_page", "permission:devtools"}, ns.Dependencies)

	defs, err = c.Definitions(context.Background(), Filter{Preset: "experimental", Namespaces: []string{"runtime", "alarms"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"runtime", "alarms"}, names(defs), "an explicit list wins over a preset")
}

func TestDefinitionsConfiguredPresetsOverrideFile(t *testing.T) {
	c := New(am.CatalogConfig{
		APIRoot:     filepath.Join("testdata", "api"),
		PresetsFile: filepath.Join("testdata", "api-names.json"),
		Presets:     map[string][]string{"stable": {"runtime"}},
	}, nil)

	defs, err := c.Definitions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"runtime"}, names(defs))

	presetNames, err := c.PresetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"experimental", "stable"}, presetNames)
}

func TestDefinitionsErrors(t *testing.T) {
	c := newTestCatalog(t, 4)

	_, err := c.Definitions(context.Background(), Filter{Preset: "nightly"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownPreset))

	_, err = c.Definitions(context.Background(), Filter{Namespaces: []string{"alarms", "missing", "runtime"}})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Definitions(ctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefinitionsConcurrentOrder(t *testing.T) {
	sequential, err := newTestCatalog(t, 1).Definitions(context.Background(), Filter{Namespaces: []string{
		"browserAction", "devtools.inspectedWindow", "runtime", "alarms",
	}})
	require.NoError(t, err)

	concurrent, err := newTestCatalog(t, 4).Definitions(context.Background(), Filter{Namespaces: []string{
		"browserAction", "devtools.inspectedWindow", "runtime", "alarms",
	}})
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, sequential, OutputOptions{Format: am.FormatJSON}))
	require.NoError(t, Encode(&b, concurrent, OutputOptions{Format: am.FormatJSON}))
	assert.Equal(t, a.String(), b.String())
}

func TestEncodeJSON(t *testing.T) {
	c := newTestCatalog(t, 1)
	defs, err := c.Definitions(context.Background(), Filter{Namespaces: []string{"browserAction"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, defs, OutputOptions{Format: am.FormatJSON, Indent: 2}))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"namespace\": \"browserAction\",\n    \"types\": ["), buf.String())

	var empty bytes.Buffer
	require.NoError(t, Encode(&empty, nil, OutputOptions{}))
	assert.Equal(t, "[]", empty.String())

	assert.Error(t, Encode(&empty, defs, OutputOptions{Format: "xml"}))
}

func TestEncodeYAML(t *testing.T) {
	c := newTestCatalog(t, 1)
	defs, err := c.Definitions(context.Background(), Filter{Namespaces: []string{"browserAction"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, defs, OutputOptions{Format: am.FormatYAML, Indent: 2}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "- namespace: browserAction\n"), out)
	assert.Contains(t, out, "$ref: TabDetails")
	assert.NotContains(t, out, "{", "block style only")

	decoded, err := decode(buf.Bytes(), am.FormatYAML)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "browserAction", namespaceOf(decoded[0]))
}

func TestSaveAndCheck(t *testing.T) {
	for _, format := range []string{am.FormatJSON, am.FormatYAML} {
		t.Run(format, func(t *testing.T) {
			c := newTestCatalog(t, 2)
			ctx := context.Background()
			opts := OutputOptions{Format: format, Indent: 2}
			dest := filepath.Join(t.TempDir(), "api."+format)

			result, err := c.Check(ctx, Filter{}, dest, opts)
			require.NoError(t, err)
			assert.True(t, result.Missing)
			assert.False(t, result.UpToDate)
			assert.Equal(t, []string{"alarms", "runtime", "browserAction"}, result.Added)

			defs, err := c.Definitions(ctx, Filter{})
			require.NoError(t, err)
			require.NoError(t, Save(dest, defs, opts))

			result, err = c.Check(ctx, Filter{}, dest, opts)
			require.NoError(t, err)
			assert.True(t, result.UpToDate)

			// Reformatting does not matter
			if format == am.FormatJSON {
				require.NoError(t, Save(dest, defs, OutputOptions{Format: format, Indent: 0}))
				result, err = c.Check(ctx, Filter{}, dest, opts)
				require.NoError(t, err)
				assert.True(t, result.UpToDate)
			}

			// A stale file reports per-namespace differences
			require.NoError(t, Save(dest, defs[:2], opts))
			result, err = c.Check(ctx, Filter{}, dest, opts)
			require.NoError(t, err)
			assert.False(t, result.UpToDate)
			assert.Equal(t, []string{"browserAction"}, result.Added)

			result, err = c.Check(ctx, Filter{Preset: "experimental"}, dest, opts)
			require.NoError(t, err)
			assert.Equal(t, []string{"devtools.inspectedWindow"}, result.Added)
			assert.Equal(t, []string{"alarms", "runtime"}, result.Removed)
		})
	}
}

func TestCompare(t *testing.T) {
	ns := func(name string, extra interface{}) interface{} {
		return map[string]interface{}{"namespace": name, "extra": extra}
	}

	result := compare(
		[]interface{}{ns("a", 1.0), ns("b", 1.0)},
		[]interface{}{ns("a", 2.0), ns("b", 1.0)},
	)
	assert.Equal(t, []string{"a"}, result.Changed)
	assert.False(t, result.UpToDate)

	result = compare(
		[]interface{}{ns("a", 1.0), ns("b", 1.0)},
		[]interface{}{ns("b", 1.0), ns("a", 1.0)},
	)
	assert.True(t, result.Reordered)
	assert.Empty(t, result.Changed)
	assert.False(t, result.UpToDate)
}

func TestSaveReplacesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "api.json")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	require.NoError(t, Save(dest, nil, OutputOptions{Format: am.FormatJSON, Indent: 2}))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}
