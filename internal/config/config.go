// Package config loads shared vtcapture/vtreplay settings.
//
// On first run a default YAML config is written to
// ~/.vterm/config.yaml. Subsequent runs read and validate that file,
// falling back to defaults for missing or out-of-range fields.
// Grounded on the pack's internal/config (patrick-goecommerce
// Multiterminal-UI).
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the capture and replay commands.
type Config struct {
	// ControlDir is where session directories (info.json +
	// stream-out.jsonl) are created and watched.
	ControlDir string `yaml:"control_dir"`

	// DefaultShell defaults to $SHELL (or /bin/sh). vtcapture always
	// requires an explicit command and does not read this field.
	DefaultShell string `yaml:"default_shell"`

	// DefaultCols/DefaultRows size a session when the attached
	// terminal's own size can't be queried.
	DefaultCols int `yaml:"default_cols"`
	DefaultRows int `yaml:"default_rows"`

	// ReplaySpeed scales inter-event delays during vtreplay (1.0 = real-time).
	ReplaySpeed float64 `yaml:"replay_speed"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return Config{
		ControlDir:   filepath.Join(os.Getenv("HOME"), ".vterm", "control"),
		DefaultShell: shell,
		DefaultCols:  80,
		DefaultRows:  24,
		ReplaySpeed:  1.0,
	}
}

func path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vterm", "config.yaml")
}

// Load reads the config file, falling back to defaults for missing fields.
func Load() Config {
	cfg := DefaultConfig()

	p := path()
	if p == "" {
		return cfg
	}

	data, err := os.ReadFile(p)
	if err != nil {
		writeDefaults(p, cfg)
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	if cfg.DefaultCols < 1 {
		cfg.DefaultCols = 80
	}
	if cfg.DefaultRows < 1 {
		cfg.DefaultRows = 24
	}
	if cfg.ReplaySpeed <= 0 {
		cfg.ReplaySpeed = 1.0
	}
	if cfg.ControlDir == "" {
		cfg.ControlDir = DefaultConfig().ControlDir
	}

	return cfg
}

func writeDefaults(p string, cfg Config) {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	header := []byte("# vterm configuration\n# Edit this file to customise vtcapture/vtreplay defaults.\n\n")
	_ = os.WriteFile(p, append(header, data...), 0o644)
}
