package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/apidefs/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/apidefs/am.toml
	SourceUser        ConfigSource = "user"        // ~/.apidefs/am.toml
	SourceProject     ConfigSource = "project"     // am.toml found walking up from the working directory
	SourceEnvironment ConfigSource = "environment" // APIDEFS_* env vars
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource // The type of config source
	Path   string       // File path or environment variable name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// Introspect returns every effective setting, sorted by key, with the
// source that provided it.
func Introspect() ([]SettingInfo, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}

	mu.Lock()
	defer mu.Unlock()

	var settings []SettingInfo
	flattenSettingsWithSources(initViper().AllSettings(), "", &settings, configSources)
	return settings, nil
}

// flattenSettingsWithSources flattens settings and assigns sources from sourceMap
func flattenSettingsWithSources(settings map[string]interface{}, prefix string, out *[]SettingInfo, sourceMap map[string]SourceInfo) {
	// Sort keys for deterministic iteration
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := settings[key]
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nestedMap, ok := value.(map[string]interface{}); ok {
			flattenSettingsWithSources(nestedMap, fullKey, out, sourceMap)
			continue
		}

		sourceInfo := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sourceMap[fullKey]; ok {
			sourceInfo = si
		}

		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(fullKey, ".", "_"))
		if envValue := os.Getenv(envKey); envValue != "" {
			sourceInfo = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		*out = append(*out, SettingInfo{
			Key:        fullKey,
			Value:      value,
			Source:     sourceInfo.Source,
			SourcePath: sourceInfo.Path,
		})
	}
}
