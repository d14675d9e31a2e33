// Package config handles export settings.
package config

import (
	"fmt"

	"github.com/mitchellh/go-homedir"

	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// Output formats.
const (
	FormatC   = "c"
	FormatO2R = "o2r"
)

// Config holds all export settings.
type Config struct {
	Export    ExportConfig    `yaml:"export"`
	Transform TransformConfig `yaml:"transform"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Root         string   `yaml:"root"`          // output directory, ~ expanded
	Format       string   `yaml:"format"`        // c or o2r
	SceneSubdir  string   `yaml:"scene_subdir"`  // resource folder of scenes
	ObjectSubdir string   `yaml:"object_subdir"` // resource folder of skeletons
	DrawLayer    string   `yaml:"draw_layer"`
	Archive      bool     `yaml:"archive"`       // pack O2R output into <name>.o2r
	WebPPreviews bool     `yaml:"webp_previews"` // write texture previews next to the output
	SearchPaths  []string `yaml:"search_paths"`  // extra directories and .o2r archives for input files
}

// TransformConfig holds the authoring-space to engine-space conversion.
type TransformConfig struct {
	BlenderToGameScale float32 `yaml:"blender_to_game_scale"`
	ZUpToYUp           bool    `yaml:"z_up_to_y_up"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Root:         ".",
			Format:       FormatC,
			SceneSubdir:  "scenes/nonmq",
			ObjectSubdir: "objects",
			DrawLayer:    "Opaque",
		},
		Transform: TransformConfig{
			BlenderToGameScale: 10,
			ZUpToYUp:           true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Export.Format {
	case FormatC, FormatO2R:
	default:
		return errs.Validation("config", "unknown export format %q, want %q or %q", c.Export.Format, FormatC, FormatO2R)
	}
	if c.Transform.BlenderToGameScale <= 0 {
		return errs.Validation("config", "blender_to_game_scale must be positive, got %g", c.Transform.BlenderToGameScale)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.Validation("config", "unknown log level %q", c.Logging.Level)
	}
	return nil
}

// RootDir returns the export root with a leading ~ expanded.
func (c *Config) RootDir() (string, error) {
	dir, err := homedir.Expand(c.Export.Root)
	if err != nil {
		return "", fmt.Errorf("expanding export root: %w", err)
	}
	return dir, nil
}

// Matrix returns the armature-space to engine-space transform: the axis
// change, if enabled, applied after a uniform scale.
func (c *Config) Matrix() zmath.Mat4 {
	s := c.Transform.BlenderToGameScale
	m := zmath.Scale(s, s, s)
	if c.Transform.ZUpToYUp {
		m = zmath.ZUpToYUp().Mul(m)
	}
	return m
}
