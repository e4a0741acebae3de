// Package config loads the app settings from a YAML asset.
package config

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/mobile/asset"
	"gopkg.in/yaml.v3"
)

// AssetName is the settings file looked up among the app assets.
const AssetName = "l2dview.yaml"

// Config holds all app settings.
type Config struct {
	ClearColor        []float32     `yaml:"clearColor"`
	LogLevel          string        `yaml:"logLevel"`
	FrameworkLogLevel string        `yaml:"frameworkLogLevel"`
	Models            []ModelConfig `yaml:"models"`
	MotionSpeed       float32       `yaml:"motionSpeed"`
	Gesture           GestureConfig `yaml:"gesture"`
	Status            StatusConfig  `yaml:"status"`

	// Background is an image file drawn behind the character instead of
	// the bundled one.
	Background string `yaml:"background"`

	// PlacementFile stores the character placement per model. Empty means
	// viewstate.DefaultPath, "-" keeps placements in memory only.
	PlacementFile string `yaml:"placementFile"`
}

// ModelConfig names one character model and its asset directory.
type ModelConfig struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// GestureConfig tunes the touch jump filter.
type GestureConfig struct {
	ShortWindowMs         int     `yaml:"shortWindowMs"`
	MaxSingleDeltaPx      float32 `yaml:"maxSingleDeltaPx"`
	MaxMultiCenterDeltaPx float32 `yaml:"maxMultiCenterDeltaPx"`
	MaxMultiRatio         float32 `yaml:"maxMultiRatio"`
	MinMultiRatio         float32 `yaml:"minMultiRatio"`
}

// StatusConfig controls the gRPC status server.
type StatusConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Port          string `yaml:"port"`
	BroadcastPort string `yaml:"broadcastPort"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ClearColor:        []float32{1, 1, 1, 1},
		LogLevel:          "info",
		FrameworkLogLevel: "verbose",
		Models: []ModelConfig{
			{Name: "Haru", Dir: "Haru"},
			{Name: "Hiyori", Dir: "Hiyori"},
			{Name: "Mark", Dir: "Mark"},
			{Name: "Natori", Dir: "Natori"},
			{Name: "Rice", Dir: "Rice"},
		},
		MotionSpeed: 1,
		Gesture: GestureConfig{
			ShortWindowMs:         45,
			MaxSingleDeltaPx:      240,
			MaxMultiCenterDeltaPx: 280,
			MaxMultiRatio:         2.2,
			MinMultiRatio:         0.45,
		},
		Status: StatusConfig{
			Port:          "31337",
			BroadcastPort: "8032",
		},
	}
}

// Load decodes settings from r on top of the defaults and validates them.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAsset loads settings from the named app asset.
func LoadAsset(name string) (*Config, error) {
	a, err := asset.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can't open config asset: %v", err)
	}
	defer a.Close()
	return Load(a)
}

// Validate checks the settings for values the app can't run with.
func (c *Config) Validate() error {
	if len(c.ClearColor) != 4 {
		return fmt.Errorf("clearColor needs 4 components, got %d", len(c.ClearColor))
	}
	if len(c.Models) == 0 {
		return errors.New("at least one model is required")
	}
	for i, m := range c.Models {
		if m.Dir == "" {
			return fmt.Errorf("model %d has no dir", i)
		}
	}
	if c.MotionSpeed <= 0 {
		return fmt.Errorf("motionSpeed must be positive, got %v", c.MotionSpeed)
	}
	if c.Gesture.MinMultiRatio > c.Gesture.MaxMultiRatio {
		return fmt.Errorf("gesture ratio range is empty: %v > %v", c.Gesture.MinMultiRatio, c.Gesture.MaxMultiRatio)
	}
	return nil
}

// ClearRGBA returns the clear color components.
func (c *Config) ClearRGBA() (r, g, b, a float32) {
	return c.ClearColor[0], c.ClearColor[1], c.ClearColor[2], c.ClearColor[3]
}
