package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/apidefs/errors"
)

// EnvPrefix prefixes environment overrides: catalog.api_root is APIDEFS_CATALOG_API_ROOT.
const EnvPrefix = "APIDEFS"

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	// configSources records which file set each flattened key
	configSources = map[string]SourceInfo{}
)

// Load reads the apidefs configuration using Viper. The result is cached
// until Reset.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path. Defaults apply;
// system, user and project files do not. Environment overrides still apply.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	bindEnv(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	configSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	bindEnv(v)

	// Set defaults first
	SetDefaults(v)

	// Merge configs in precedence order: system -> user -> project -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// findProjectConfig searches for am.toml by walking up from the working
// directory. Returns the path of the first one found, or empty string.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

// ConfigPaths lists the config files consulted, lowest precedence first,
// whether or not they exist.
func ConfigPaths() []SourceInfo {
	paths := []SourceInfo{{Source: SourceSystem, Path: SystemConfigPath}}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, SourceInfo{Source: SourceUser, Path: filepath.Join(home, UserConfigDir, ConfigFileName)})
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, SourceInfo{Source: SourceProject, Path: project})
	}
	return paths
}

// mergeConfigFiles merges configuration files in precedence order.
// Precedence (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	for _, src := range ConfigPaths() {
		if _, err := os.Stat(src.Path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(src.Path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			// Unreadable files are reported by `apidefs am validate`
			continue
		}

		settings := tempViper.AllSettings()
		if err := v.MergeConfigMap(settings); err != nil {
			continue
		}
		recordSources(settings, "", src)
	}
}

func recordSources(settings map[string]interface{}, prefix string, src SourceInfo) {
	for key, value := range settings {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			recordSources(nested, fullKey, src)
			continue
		}
		configSources[fullKey] = src
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetDatabasePath returns the configured snapshot database path
func GetDatabasePath() (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}
	return config.Database.Path, nil
}
