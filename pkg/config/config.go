// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/user/framepipe/pkg/savequeue"
)

// Config represents the full configuration for framepipe.
type Config struct {
	// Input/Output
	Output string `yaml:"output"`

	// Frame source
	Source            string `yaml:"source"` // "pattern" or "url"
	URL               string `yaml:"url"`
	ChromePath        string `yaml:"chrome_path"`
	ScreencastQuality int    `yaml:"screencast_quality"`

	// Geometry and timing
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         float64 `yaml:"fps"`
	StartSec    float64 `yaml:"start_sec"`
	DurationSec float64 `yaml:"duration_sec"`
	Frames      int     `yaml:"frames"` // count-bounded session when > 0

	// Encoder subprocess
	FFmpegPath  string   `yaml:"ffmpeg_path"`
	FFmpegQuiet bool     `yaml:"ffmpeg_quiet"`
	InputArgs   []string `yaml:"input_args"`
	OutputArgs  []string `yaml:"output_args"`

	// Image-sequence recording
	Sequence       bool   `yaml:"sequence"`
	SequencePrefix string `yaml:"sequence_prefix"`

	// Save queue
	MaxQueueMemory string `yaml:"max_queue_memory"` // e.g. "500MB"; "0" forces synchronous saves
	Workers        int    `yaml:"workers"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Source:            "pattern",
		ScreencastQuality: 80,

		Width:       1280,
		Height:      720,
		FPS:         24.0,
		DurationSec: 10.0,

		MaxQueueMemory: "500MiB",

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MaxQueueBytes parses the save-queue memory ceiling. An empty value keeps
// the default; zero disables the asynchronous save path.
func (c Config) MaxQueueBytes() (int64, error) {
	if c.MaxQueueMemory == "" {
		return savequeue.DefaultMaxQueuedBytes, nil
	}
	n, err := humanize.ParseBytes(c.MaxQueueMemory)
	if err != nil {
		return 0, fmt.Errorf("parse max_queue_memory %q: %w", c.MaxQueueMemory, err)
	}
	return int64(n), nil
}
