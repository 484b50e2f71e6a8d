package am

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/teranos/apidefs/errors"
)

// CheckFile decodes the TOML file at path strictly: it fails on syntax errors
// and on keys that do not belong to Config, which viper would silently ignore.
// The decoded file is validated after defaults are applied.
func CheckFile(path string) error {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to parse %s", path), errors.ErrInvalidConfig)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		err := errors.Newf("%s: unknown keys %v", path, keys)
		return errors.Mark(errors.WithHint(err, "run `apidefs am show` to list the supported keys"), errors.ErrInvalidConfig)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		return errors.Mark(err, errors.ErrInvalidConfig)
	}
	return loaded.Validate()
}
