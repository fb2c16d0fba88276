// Package config loads the arcade's runtime settings from HANDARCADE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration.
type Config struct {
	Addr      string `env:"HANDARCADE_ADDR" envDefault:":8080"`
	DataDir   string `env:"HANDARCADE_DATA_DIR"`
	WebDir    string `env:"HANDARCADE_WEB_DIR"`
	PluginDir string `env:"HANDARCADE_PLUGIN_DIR"`
	LogLevel  string `env:"HANDARCADE_LOG_LEVEL" envDefault:"info"`
	Tray      bool   `env:"HANDARCADE_TRAY" envDefault:"true"`

	CameraID        int     `env:"HANDARCADE_CAMERA_ID" envDefault:"0"`
	Mirror          bool    `env:"HANDARCADE_MIRROR" envDefault:"true"`
	MotionThreshold float64 `env:"HANDARCADE_MOTION_THRESHOLD" envDefault:"1.0"`
	Tracker         string  `env:"HANDARCADE_TRACKER" envDefault:"hand"`

	SessionSeconds  int     `env:"HANDARCADE_SESSION_SECONDS" envDefault:"45"`
	TickRate        int     `env:"HANDARCADE_TICK_RATE" envDefault:"60"`
	ConfirmFrames   int     `env:"HANDARCADE_CONFIRM_FRAMES" envDefault:"30"`
	SmoothingWindow int     `env:"HANDARCADE_SMOOTHING_WINDOW" envDefault:"5"`
	SmoothingAlpha  float64 `env:"HANDARCADE_SMOOTHING_ALPHA" envDefault:"0.3"`
	Seed            uint64  `env:"HANDARCADE_SEED" envDefault:"0"`

	PluginTimeout time.Duration `env:"HANDARCADE_PLUGIN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment, fills path defaults under the user's home
// directory and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".handarcade")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.Tracker != "hand" && c.Tracker != "pose" {
		errs = append(errs, fmt.Errorf("HANDARCADE_TRACKER must be hand or pose, got %q", c.Tracker))
	}
	if c.SessionSeconds <= 0 {
		errs = append(errs, errors.New("HANDARCADE_SESSION_SECONDS must be positive"))
	}
	if c.TickRate <= 0 {
		errs = append(errs, errors.New("HANDARCADE_TICK_RATE must be positive"))
	}
	if c.ConfirmFrames <= 0 {
		errs = append(errs, errors.New("HANDARCADE_CONFIRM_FRAMES must be positive"))
	}
	if c.SmoothingWindow <= 0 {
		errs = append(errs, errors.New("HANDARCADE_SMOOTHING_WINDOW must be positive"))
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		errs = append(errs, errors.New("HANDARCADE_SMOOTHING_ALPHA must be in (0, 1]"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DBPath returns the sqlite database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "handarcade.db")
}
