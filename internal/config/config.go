package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/picker"
)

// Config represents the application configuration.
type Config struct {
	// Cube data files
	Cube CubeConfig `toml:"cube"`

	// Draft table shape
	Draft DraftConfig `toml:"draft"`

	// Pick strategy
	Picker PickerConfig `toml:"picker"`

	// Deck building
	Deckbuild DeckbuildConfig `toml:"deckbuild"`

	// Batch simulation
	Trials TrialsConfig `toml:"trials"`

	// Result persistence
	Storage StorageConfig `toml:"storage"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// CubeConfig points at the cube's TOML data.
type CubeConfig struct {
	CardData  string `toml:"card_data"`  // Path to the card list
	FixerData string `toml:"fixer_data"` // Optional path to fixer color identities
}

// DraftConfig contains the draft table settings.
type DraftConfig struct {
	Seats        int   `toml:"seats"`
	Phases       int   `toml:"phases"`
	CardsPerPack int   `toml:"cards_per_pack"`
	Seed         int64 `toml:"seed"` // 0 seeds from the clock
}

// PickerConfig selects the pick strategy and optional weight overrides.
type PickerConfig struct {
	Strategy string                  `toml:"strategy"`
	Weights  map[string]WeightConfig `toml:"weights,omitempty"`
}

// WeightConfig is a component weight over draft progress. Equal values give
// a constant weight.
type WeightConfig struct {
	Start float64 `toml:"start"`
	End   float64 `toml:"end"`
}

// DeckbuildConfig contains deck builder settings.
type DeckbuildConfig struct {
	Nonlands             int `toml:"nonlands"`
	SplashFixerAllowance int `toml:"splash_fixer_allowance"`
}

// TrialsConfig contains batch simulation settings.
type TrialsConfig struct {
	Count     int    `toml:"count"`
	Workers   int    `toml:"workers"`    // 0 uses one worker per CPU
	OutputDir string `toml:"output_dir"` // Draft logs are written here when set
}

// StorageConfig contains the trial results database settings.
type StorageConfig struct {
	Path        string `toml:"path"` // Empty disables persistence
	AutoMigrate bool   `toml:"auto_migrate"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	info := draft.DefaultInfo()
	return &Config{
		Cube: CubeConfig{
			CardData:  "cube.toml",
			FixerData: "",
		},
		Draft: DraftConfig{
			Seats:        info.Seats,
			Phases:       info.Phases,
			CardsPerPack: info.CardsPerPack,
			Seed:         0,
		},
		Picker: PickerConfig{
			Strategy: string(picker.StrategySynergyPowerFixing),
		},
		Deckbuild: DeckbuildConfig{
			Nonlands:             deckbuild.DefaultNonlands,
			SplashFixerAllowance: deckbuild.DefaultSplashFixerAllowance,
		},
		Trials: TrialsConfig{
			Count:   100,
			Workers: 0,
		},
		Storage: StorageConfig{
			Path:        "",
			AutoMigrate: true,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns the path to the user's configuration file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cube-drafter", "config.toml"), nil
}

// Load loads the configuration from path. Returns default config if the file
// doesn't exist. Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Cube.CardData == "" {
		return fmt.Errorf("cube card data path is required")
	}

	if err := c.DraftInfo().Validate(); err != nil {
		return fmt.Errorf("invalid draft settings: %w", err)
	}

	if _, err := picker.ParseStrategy(c.Picker.Strategy); err != nil {
		return err
	}
	for name := range c.Picker.Weights {
		if !picker.IsComponentName(name) {
			return fmt.Errorf("unknown weight component %q", name)
		}
	}

	if c.Deckbuild.Nonlands <= 0 {
		return fmt.Errorf("deckbuild nonlands must be positive: %d", c.Deckbuild.Nonlands)
	}
	if c.Deckbuild.SplashFixerAllowance < 0 {
		return fmt.Errorf("splash fixer allowance cannot be negative: %d", c.Deckbuild.SplashFixerAllowance)
	}

	if c.Trials.Count < 0 {
		return fmt.Errorf("trial count cannot be negative: %d", c.Trials.Count)
	}
	if c.Trials.Workers < 0 {
		return fmt.Errorf("trial workers cannot be negative: %d", c.Trials.Workers)
	}

	return nil
}

// DraftInfo returns the draft table shape.
func (c *Config) DraftInfo() draft.Info {
	return draft.Info{
		Seats:        c.Draft.Seats,
		Phases:       c.Draft.Phases,
		CardsPerPack: c.Draft.CardsPerPack,
	}
}

// DeckbuildOptions returns deck builder options.
func (c *Config) DeckbuildOptions() deckbuild.Options {
	return deckbuild.Options{
		Nonlands:             c.Deckbuild.Nonlands,
		SplashFixerAllowance: c.Deckbuild.SplashFixerAllowance,
	}
}

// PickerWeights converts the weight overrides into weight functions.
func (c *Config) PickerWeights() map[string]picker.WeightFunc {
	if len(c.Picker.Weights) == 0 {
		return nil
	}
	weights := make(map[string]picker.WeightFunc, len(c.Picker.Weights))
	for name, w := range c.Picker.Weights {
		if w.Start == w.End {
			weights[name] = picker.Constant(w.Start)
		} else {
			weights[name] = picker.Linear(w.Start, w.End)
		}
	}
	return weights
}
