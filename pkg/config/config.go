// Package config loads arrowgram settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/arrowgram/pkg/layout"
	"github.com/ha1tch/arrowgram/pkg/render"
)

// DefaultName is looked up in the home directory when no path is given.
const DefaultName = ".arrowgram.yaml"

// Config holds geometry constants at the top level and per-renderer
// settings under svg and png.
type Config struct {
	Layout layout.Options    `yaml:",inline"`
	SVG    render.SVGOptions `yaml:"svg"`
	PNG    render.PNGOptions `yaml:"png"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		SVG:    render.DefaultSVGOptions(),
		PNG:    render.DefaultPNGOptions(),
	}
}

// Path returns the home-directory configuration path.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultName
	}
	return filepath.Join(home, DefaultName)
}

// Load reads path, or the home-directory file when path is empty. A missing
// home-directory file yields the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
