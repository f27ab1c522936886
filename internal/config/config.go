package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blinkaway/internal/logx"
	"blinkaway/internal/storage"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the app config file inside the config directory.
const FileName = "config.yaml"

const (
	minOverlayOpacity = 0.7
	maxOverlayOpacity = 0.95
	minToastDuration  = 2 * time.Second
	maxToastDuration  = 60 * time.Second
)

// Config holds application settings that are not part of the reminder schedule.
type Config struct {
	Log       logx.Config
	Storage   storage.Config
	Overlay   OverlayConfig
	Toast     ToastConfig
	DebugMenu bool
}

// OverlayConfig controls the 20-20-20 overlay window.
type OverlayConfig struct {
	Opacity    float64
	Fullscreen bool
}

// ToastConfig controls blink and posture toasts.
type ToastConfig struct {
	Duration time.Duration
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log: logx.Config{
			Level:   "info",
			Console: true,
		},
		Storage: storage.Config{Driver: storage.DriverYAML},
		Overlay: OverlayConfig{
			Opacity:    0.85,
			Fullscreen: true,
		},
		Toast: ToastConfig{Duration: 6 * time.Second},
	}
}

type yamlConfig struct {
	Log struct {
		Level   string `yaml:"level"`
		Console *bool  `yaml:"console"`
		File    struct {
			Enabled bool   `yaml:"enabled"`
			Path    string `yaml:"path"`
		} `yaml:"file"`
	} `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"storage"`
	Overlay struct {
		Opacity    float64 `yaml:"opacity"`
		Fullscreen *bool   `yaml:"fullscreen"`
	} `yaml:"overlay"`
	Toast struct {
		DurationSeconds int `yaml:"duration_seconds"`
	} `yaml:"toast"`
	DebugMenu bool `yaml:"debug_menu"`
}

// Load reads the config at path on fs. A missing file yields defaults.
// Out-of-range values fall back to their defaults.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	rawData, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	return parse(rawData)
}

func parse(rawData []byte) (Config, error) {
	cfg := Default()
	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	applyYamlConfig(&cfg, fileData)
	return cfg, nil
}

// Save writes cfg to path on fs, creating the directory if needed.
func Save(fs afero.Fs, path string, cfg Config) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var fileData yamlConfig
	fileData.Log.Level = cfg.Log.Level
	fileData.Log.Console = &cfg.Log.Console
	fileData.Log.File.Enabled = cfg.Log.File.Enabled
	fileData.Log.File.Path = cfg.Log.File.Path
	fileData.Storage.Driver = cfg.Storage.Driver
	fileData.Storage.Path = cfg.Storage.Path
	fileData.Overlay.Opacity = cfg.Overlay.Opacity
	fileData.Overlay.Fullscreen = &cfg.Overlay.Fullscreen
	fileData.Toast.DurationSeconds = int(cfg.Toast.Duration / time.Second)
	fileData.DebugMenu = cfg.DebugMenu

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := afero.WriteFile(fs, path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyYamlConfig(cfg *Config, fileData yamlConfig) {
	if fileData.Log.Level != "" {
		cfg.Log.Level = fileData.Log.Level
	}
	if fileData.Log.Console != nil {
		cfg.Log.Console = *fileData.Log.Console
	}
	cfg.Log.File.Enabled = fileData.Log.File.Enabled
	cfg.Log.File.Path = fileData.Log.File.Path

	if fileData.Storage.Driver != "" {
		cfg.Storage.Driver = fileData.Storage.Driver
	}
	cfg.Storage.Path = fileData.Storage.Path

	if fileData.Overlay.Opacity >= minOverlayOpacity && fileData.Overlay.Opacity <= maxOverlayOpacity {
		cfg.Overlay.Opacity = fileData.Overlay.Opacity
	}
	if fileData.Overlay.Fullscreen != nil {
		cfg.Overlay.Fullscreen = *fileData.Overlay.Fullscreen
	}

	toastDuration := time.Duration(fileData.Toast.DurationSeconds) * time.Second
	if toastDuration >= minToastDuration && toastDuration <= maxToastDuration {
		cfg.Toast.Duration = toastDuration
	}

	cfg.DebugMenu = fileData.DebugMenu
}
