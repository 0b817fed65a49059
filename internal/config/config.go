package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/screencheck/screencheck/internal/media"
)

// Provider names.
const (
	ProviderDesktop   = "desktop"
	ProviderSimulated = "simulated"
)

type Config struct {
	Provider  string          `yaml:"provider"`
	Capture   CaptureConfig   `yaml:"capture"`
	Simulated SimulatedConfig `yaml:"simulated"`
	Preview   PreviewConfig   `yaml:"preview"`
	Log       LogConfig       `yaml:"log"`
}

type CaptureConfig struct {
	FrameRate float64 `yaml:"frame_rate"`
	Display   int     `yaml:"display"`
}

type SimulatedConfig struct {
	Outcome     string        `yaml:"outcome"`
	PickerDelay time.Duration `yaml:"picker_delay"`
	EndAfter    time.Duration `yaml:"end_after"`
	Surface     string        `yaml:"surface"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
}

type PreviewConfig struct {
	MaxFPS float64 `yaml:"max_fps"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sim := media.DefaultSimulatedConfig()
	return &Config{
		Provider: ProviderDesktop,
		Capture: CaptureConfig{
			FrameRate: media.DefaultFrameRate,
		},
		Simulated: SimulatedConfig{
			Outcome:     string(sim.Outcome),
			PickerDelay: sim.PickerDelay,
			Surface:     string(sim.Surface),
			Width:       sim.Width,
			Height:      sim.Height,
		},
		Preview: PreviewConfig{
			MaxFPS: 15,
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(os.TempDir(), "screencheck.log"),
		},
	}
}

// DefaultPath is where the config file is looked up when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "screencheck.yaml"
	}
	return filepath.Join(dir, "screencheck", "config.yaml")
}

// Load reads path over the defaults. A missing file is an error unless
// optional is set, in which case the defaults are returned.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and enum fields.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderDesktop, ProviderSimulated:
	default:
		errs = append(errs, fmt.Errorf("provider: unknown provider %q", c.Provider))
	}
	if c.Capture.FrameRate <= 0 || c.Capture.FrameRate > 120 {
		errs = append(errs, fmt.Errorf("capture.frame_rate: %v out of range (0, 120]", c.Capture.FrameRate))
	}
	if c.Capture.Display < 0 {
		errs = append(errs, fmt.Errorf("capture.display: must not be negative"))
	}
	if _, err := media.ParsePickerOutcome(c.Simulated.Outcome); err != nil {
		errs = append(errs, fmt.Errorf("simulated.outcome: %w", err))
	}
	if c.Simulated.PickerDelay < 0 || c.Simulated.EndAfter < 0 {
		errs = append(errs, fmt.Errorf("simulated: durations must not be negative"))
	}
	if s := strings.TrimSpace(c.Simulated.Surface); s != "" && media.ParseDisplaySurface(s) == media.SurfaceUnknown {
		errs = append(errs, fmt.Errorf("simulated.surface: unknown surface %q", s))
	}
	if c.Simulated.Width < 0 || c.Simulated.Height < 0 {
		errs = append(errs, fmt.Errorf("simulated: width and height must not be negative"))
	}
	if c.Preview.MaxFPS <= 0 {
		errs = append(errs, fmt.Errorf("preview.max_fps: must be positive"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// SimulatedMedia converts the simulated section for media.NewSimulated.
// Call Validate first.
func (c *Config) SimulatedMedia() media.SimulatedConfig {
	outcome, _ := media.ParsePickerOutcome(c.Simulated.Outcome)
	return media.SimulatedConfig{
		Outcome:     outcome,
		PickerDelay: c.Simulated.PickerDelay,
		EndAfter:    c.Simulated.EndAfter,
		Surface:     media.ParseDisplaySurface(c.Simulated.Surface),
		Width:       c.Simulated.Width,
		Height:      c.Simulated.Height,
	}
}
