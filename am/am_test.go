package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/apidefs/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.Catalog.APIRoot)
	assert.Equal(t, []string{"common", "chrome"}, cfg.Catalog.SubAPIs)
	assert.Equal(t, []string{".json", ".idl"}, cfg.Catalog.Extensions)
	assert.Equal(t, "_api_features.json", cfg.Catalog.ManifestFile)
	assert.Equal(t, "stable", cfg.Catalog.DefaultPreset)
	assert.Equal(t, DefaultWorkers, cfg.Catalog.Workers)
	assert.Equal(t, "api.json", cfg.Output.Dest)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "apidefs.db", cfg.Database.Path)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
	assert.Equal(t, "everforest", cfg.Log.Theme)

	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestDefaultsAreNotShared(t *testing.T) {
	a := Defaults()
	a.Catalog.SubAPIs[0] = "changed"

	b := Defaults()
	assert.Equal(t, "common", b.Catalog.SubAPIs[0])
	assert.Equal(t, "common", DefaultSubAPIs[0])
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeFile(t, path, `
[catalog]
api_root = "/srv/api"
workers = 8

[catalog.presets]
stable = ["alarms", "runtime"]
experimental = ["experimental.devtools.console"]

[output]
format = "yaml"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/api", cfg.Catalog.APIRoot)
	assert.Equal(t, 8, cfg.Catalog.Workers)
	assert.Equal(t, []string{"alarms", "runtime"}, cfg.Catalog.Presets["stable"])
	assert.Equal(t, FormatYAML, cfg.Output.Format)
	// Untouched sections keep their defaults
	assert.Equal(t, "api.json", cfg.Output.Dest)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeFile(t, path, "[catalog]\napi_root = \"from-file\"\n")
	t.Setenv("APIDEFS_CATALOG_API_ROOT", "from-env")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Catalog.APIRoot)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.toml")
}

func TestLoad_MergesProjectConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, UserConfigDir, ConfigFileName), `
[catalog]
api_root = "user-root"
workers = 2
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, ConfigFileName), `
[catalog]
workers = 6
`)
	sub := filepath.Join(project, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, DefaultDirPermissions))
	t.Chdir(sub)

	cfg, err := Load()
	require.NoError(t, err)

	// Project overrides user per key, not per table
	assert.Equal(t, "user-root", cfg.Catalog.APIRoot)
	assert.Equal(t, 6, cfg.Catalog.Workers)

	settings, err := Introspect()
	require.NoError(t, err)

	sources := map[string]SettingInfo{}
	for _, s := range settings {
		sources[s.Key] = s
	}
	assert.Equal(t, SourceUser, sources["catalog.api_root"].Source)
	assert.Equal(t, SourceProject, sources["catalog.workers"].Source)
	assert.Equal(t, SourceDefault, sources["output.dest"].Source)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty api root", func(c *Config) { c.Catalog.APIRoot = "" }, "catalog.api_root"},
		{"no sub apis", func(c *Config) { c.Catalog.SubAPIs = nil }, "catalog.sub_apis"},
		{"unsupported extension", func(c *Config) { c.Catalog.Extensions = []string{".yaml"} }, "unsupported extension"},
		{"zero workers", func(c *Config) { c.Catalog.Workers = 0 }, "catalog.workers"},
		{"empty preset entry", func(c *Config) {
			c.Catalog.Presets = map[string][]string{"stable": {"alarms", " "}}
		}, "catalog.presets.stable"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative indent", func(c *Config) { c.Output.Indent = -1 }, "output.indent"},
		{"zero indent is valid", func(c *Config) { c.Output.Indent = 0 }, ""},
		{"zero debounce is valid", func(c *Config) { c.Watch.DebounceMS = 0 }, ""},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -5 }, "watch.debounce_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("walks up to am.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "found", "a", "b")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		writeFile(t, filepath.Join(tmpDir, "found", ConfigFileName), "")
		t.Chdir(subDir)

		result := findProjectConfig()
		require.NotEmpty(t, result)
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, ConfigFileName, filepath.Base(result))
	})

	t.Run("ignores other toml files", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "other", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		writeFile(t, filepath.Join(tmpDir, "other", "config.toml"), "")
		t.Chdir(subDir)

		assert.Empty(t, findProjectConfig())
	})
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "valid.toml")
		writeFile(t, path, "[catalog]\napi_root = \"api\"\n[output]\nindent = 4\n")
		assert.NoError(t, CheckFile(path))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.toml")
		writeFile(t, path, "[catalog]\napi_rot = \"api\"\n")
		err := CheckFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog.api_rot")
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		assert.NotEmpty(t, errors.GetAllHints(err))
	})

	t.Run("syntax error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		writeFile(t, path, "[catalog\n")
		err := CheckFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.toml")
		writeFile(t, path, "[output]\nformat = \"xml\"\n")
		err := CheckFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.format")
	})
}

func TestRender(t *testing.T) {
	cfg := Defaults()
	cfg.Catalog.Presets = map[string][]string{"stable": {"alarms"}}

	data, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[catalog]")
	assert.Contains(t, string(data), "[output]")

	var back Config
	require.NoError(t, toml.Unmarshal(data, &back))
	assert.Equal(t, cfg, &back)
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ConfigFileName)

	require.NoError(t, SetValue(path, "catalog.api_root", "/srv/api"))
	require.NoError(t, SetValue(path, "catalog.workers", ParseValue("3")))
	require.NoError(t, SetValue(path, "watch.hook", ParseValue("make docs")))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/api", cfg.Catalog.APIRoot)
	assert.Equal(t, 3, cfg.Catalog.Workers)
	assert.Equal(t, "make docs", cfg.Watch.Hook)

	// Two rewrites of an existing file leave two backups
	_, err = os.Stat(path + ".back1")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".back2")
	assert.NoError(t, err)
	assert.True(t, IsBackupFile(path+".back2"))

	assert.Error(t, SetValue(path, "catalog..x", 1))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(42), ParseValue("42"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, "yaml", ParseValue("yaml"))
}
