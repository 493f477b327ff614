// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields
// distinguish unset keys from explicit zero values.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Audio   AudioConfig   `toml:"audio"`
	UI      UIConfig      `toml:"ui"`
}

// SessionConfig maps session-related settings.
type SessionConfig struct {
	Mode        *string `toml:"mode"`
	NBack       *int    `toml:"nback"`
	ISIMs       *int    `toml:"isi"`
	DurationSec *int    `toml:"duration"`
}

// AudioConfig maps audio-related settings.
type AudioConfig struct {
	Rate       *float64 `toml:"rate"`
	ErrorTone  *bool    `toml:"error-tone"`
	ToneVolume *float64 `toml:"volume"`
}

// UIConfig maps interface settings.
type UIConfig struct {
	Theme *string `toml:"theme"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
