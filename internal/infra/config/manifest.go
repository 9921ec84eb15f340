package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is an optional YAML description of a batch run, as an
// alternative to listing everything on the command line.
type Manifest struct {
	OutputDir    string   `yaml:"output_dir"`
	TargetWidth  int      `yaml:"target_width"`
	TargetHeight int      `yaml:"target_height"`
	JPEGQuality  int      `yaml:"jpeg_quality"`
	BundlePath   string   `yaml:"bundle"`
	Files        []string `yaml:"files"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
