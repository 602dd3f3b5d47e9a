package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SynthOutputConfig defines the MIDI output used as the live synth boundary
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
}

// ExportConfig stores audio export preferences
type ExportConfig struct {
	Directory  string `json:"directory,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// RecordingConfig stores recording behavior preferences
type RecordingConfig struct {
	CountInBeats int     `json:"countInBeats,omitempty"`
	MaxLayers    int     `json:"maxLayers,omitempty"`
	GridBeats    float64 `json:"gridBeats,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo     int `json:"lastTempo,omitempty"`
	LastLoopBeats int `json:"lastLoopBeats,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	SynthOutput SynthOutputConfig `json:"synthOutput,omitempty"`
	Export      ExportConfig      `json:"export,omitempty"`
	Recording   RecordingConfig   `json:"recording,omitempty"`
	UI          UIConfig          `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SynthOutput: SynthOutputConfig{
			Channel: 1,
		},
		Export: ExportConfig{
			SampleRate: 44100,
		},
		Recording: RecordingConfig{
			CountInBeats: 4,
			MaxLayers:    16,
			GridBeats:    0.25,
		},
		UI: UIConfig{
			LastTempo:     120,
			LastLoopBeats: 8,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shapeloop"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
