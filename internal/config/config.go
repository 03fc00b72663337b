// Package config loads optional defaults from a TOML file in the user's
// config directory. Flags given on the command line always win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Model        string `toml:"model"`
	ModelDir     string `toml:"model_dir"`
	Language     string `toml:"language"`
	AutoDownload *bool  `toml:"auto_download"`
}

// Load reads the config file at path. A missing file is not an error and
// yields the zero config.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
