package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

// Render encodes the effective configuration as TOML.
func Render(c *Config) ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// SetValue sets a dotted key (catalog.api_root) in the TOML file at
// configPath, creating the file if needed. The previous file is rotated into
// .back1 .. .back3.
func SetValue(configPath, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.Newf("invalid config key %q", key)
		}
	}

	config, err := loadOrInitialize(configPath)
	if err != nil {
		return err
	}

	section := config
	for _, p := range parts[:len(parts)-1] {
		next, ok := section[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			section[p] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value

	return save(config, configPath)
}

// ParseValue interprets a command-line value as a TOML scalar: integers and
// booleans keep their type, everything else is a string.
func ParseValue(raw string) interface{} {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// loadOrInitialize loads a config file as a generic map, or returns an empty
// map if it doesn't exist
func loadOrInitialize(configPath string) (map[string]interface{}, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return make(map[string]interface{}), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}

	config := make(map[string]interface{})
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return config, nil
}

// save writes the config to configPath with backup
func save(config map[string]interface{}, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail config save)
		logger.Warnw("Failed to delete old backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// IsBackupFile reports whether path is a rotated config backup (.back1, .back2, .back3)
func IsBackupFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".back1" || ext == ".back2" || ext == ".back3"
}
