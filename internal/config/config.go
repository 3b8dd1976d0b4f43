// Package config loads the optional svslabel configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"example.com/svslabel/internal/common"
	"example.com/svslabel/internal/label"
)

// Config controls the destructive-operation guard, replacement image
// geometry, and log rotation.
type Config struct {
	// ProtectedMarkers lists path substrings that block zero-fill and splice
	// operations, guarding canonical archival copies.
	ProtectedMarkers []string `yaml:"protectedMarkers"`

	Label labelConfig           `yaml:"label"`
	Logs  common.RotationConfig `yaml:"logs"`
}

type labelConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	MacroWidth  int `yaml:"macroWidth"`
	MacroHeight int `yaml:"macroHeight"`
	QRSize      int `yaml:"qrSize"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ProtectedMarkers: []string{"DigitalPathology"},
	}
}

// Load reads and decodes the YAML file at path, applying defaults for
// omitted fields.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if cfg.ProtectedMarkers == nil {
		cfg.ProtectedMarkers = Default().ProtectedMarkers
	}
	return cfg, nil
}

// Geometry converts the label settings into the builder's geometry. Zero
// fields fall back to the builder defaults.
func (c Config) Geometry() label.Geometry {
	return label.Geometry{
		LabelWidth:  c.Label.Width,
		LabelHeight: c.Label.Height,
		MacroWidth:  c.Label.MacroWidth,
		MacroHeight: c.Label.MacroHeight,
		QRSize:      c.Label.QRSize,
	}
}
