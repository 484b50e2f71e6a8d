// Package am loads the apidefs configuration ("am" is where the tool is told
// what it is): where the API definitions live, which namespaces make up each
// preset, where the catalog is written and how the watcher behaves.
//
// Configuration is TOML, merged from system, user and project files, with
// APIDEFS_* environment variables taking precedence.
package am

// Config represents the apidefs configuration
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog" toml:"catalog"`
	Output   OutputConfig   `mapstructure:"output" toml:"output"`
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// CatalogConfig locates API definitions and names the presets
type CatalogConfig struct {
	APIRoot      string   `mapstructure:"api_root" toml:"api_root"`           // Directory holding the sub-API trees
	SubAPIs      []string `mapstructure:"sub_apis" toml:"sub_apis"`           // Searched in order (default: common, chrome)
	Extensions   []string `mapstructure:"extensions" toml:"extensions"`       // Searched in order (default: .json, .idl)
	ManifestFile string   `mapstructure:"manifest_file" toml:"manifest_file"` // Per sub-API features manifest

	// Presets name lists of namespaces. PresetsFile, when set, is a JSON
	// object of the same shape whose entries are merged under Presets.
	Presets       map[string][]string `mapstructure:"presets" toml:"presets"`
	PresetsFile   string              `mapstructure:"presets_file" toml:"presets_file"`
	DefaultPreset string              `mapstructure:"default_preset" toml:"default_preset"`

	Workers int `mapstructure:"workers" toml:"workers"` // Concurrent namespace builds; 1 = sequential
}

// OutputConfig configures the written catalog
type OutputConfig struct {
	Dest   string `mapstructure:"dest" toml:"dest"`
	Format string `mapstructure:"format" toml:"format"` // json or yaml
	Indent int    `mapstructure:"indent" toml:"indent"` // JSON indent width
}

// DatabaseConfig configures the SQLite catalog snapshot store
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// WatchConfig configures `apidefs watch`
type WatchConfig struct {
	DebounceMS int    `mapstructure:"debounce_ms" toml:"debounce_ms"`
	Hook       string `mapstructure:"hook" toml:"hook"` // Shell-quoted command run after each rebuild
}

// LogConfig configures console logging
type LogConfig struct {
	Theme string `mapstructure:"theme" toml:"theme"` // gruvbox, everforest
}

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// File and directory names
const (
	ConfigFileName        = "am.toml"
	UserConfigDir         = ".apidefs"
	SystemConfigPath      = "/etc/apidefs/am.toml"
	DefaultDirPermissions = 0o750
)
