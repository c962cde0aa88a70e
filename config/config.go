package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration.
type Config struct {
	Devices DevicesConfig `toml:"devices"`
	Pointer PointerConfig `toml:"pointer"`
	Log     LogConfig     `toml:"log"`
}

// DevicesConfig controls the startup device scan.
type DevicesConfig struct {
	InputDir   string   `toml:"input_dir"`
	Allowed    []string `toml:"allowed"`
	MaxDevices int      `toml:"max_devices"`
	Grab       bool     `toml:"grab"`
}

// PointerConfig holds the pointer-mode tunables.
type PointerConfig struct {
	DefaultSpeed        int32 `toml:"default_speed"`
	MinSpeed            int32 `toml:"min_speed"`
	WheelSlowdownFactor uint  `toml:"wheel_slowdown_factor"`
}

// LogConfig names the diagnostic log sink.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Devices: DevicesConfig{
			InputDir:   "/dev/input",
			Allowed:    []string{"mtk-kpd", "matrix-keypad", "AT Translated Set 2 keyboard"},
			MaxDevices: 2,
			Grab:       true,
		},
		Pointer: PointerConfig{
			DefaultSpeed:        4,
			MinSpeed:            1,
			WheelSlowdownFactor: 5,
		},
		Log: LogConfig{
			File:  "/cache/FlipMouse.log",
			Level: "info",
		},
	}
}

// LoadConfig reads the configuration file, filling unset keys from the
// defaults. A missing file is created with the defaults so there is
// something to edit.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig writes the configuration as TOML, creating the directory if
// needed.
func SaveConfig(configPath string, config *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
