package am

import (
	"github.com/spf13/viper"
)

// Default values shared with callers that build configs by hand
const (
	DefaultAPIRoot      = "api"
	DefaultManifestFile = "_api_features.json"
	DefaultPreset       = "stable"
	DefaultDest         = "api.json"
	DefaultIndent       = 2
	DefaultWorkers      = 4
	DefaultDatabasePath = "apidefs.db"
	DefaultDebounceMS   = 500
	DefaultLogTheme     = "everforest"
	DefaultOutputFormat = FormatJSON
)

// DefaultSubAPIs and DefaultExtensions are searched in order when resolving
// a namespace to a definition file.
var (
	DefaultSubAPIs    = []string{"common", "chrome"}
	DefaultExtensions = []string{".json", ".idl"}
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Catalog defaults
	v.SetDefault("catalog.api_root", DefaultAPIRoot)
	v.SetDefault("catalog.sub_apis", append([]string(nil), DefaultSubAPIs...))
	v.SetDefault("catalog.extensions", append([]string(nil), DefaultExtensions...))
	v.SetDefault("catalog.manifest_file", DefaultManifestFile)
	v.SetDefault("catalog.presets_file", "")
	v.SetDefault("catalog.default_preset", DefaultPreset)
	v.SetDefault("catalog.workers", DefaultWorkers)

	// Output defaults
	v.SetDefault("output.dest", DefaultDest)
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.indent", DefaultIndent) // matches the historical 2-space catalog

	// Database defaults
	v.SetDefault("database.path", DefaultDatabasePath)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.hook", "")

	// Log defaults
	v.SetDefault("log.theme", DefaultLogTheme)
}

// Defaults returns a Config holding only default values.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode; a failure here is a programming error.
		panic(err)
	}
	return cfg
}
