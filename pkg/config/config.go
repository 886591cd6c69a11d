package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"huntoverlay/pkg/model"
)

// Config holds the application configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Log         LogConfig         `yaml:"log"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Overlay     OverlayConfig     `yaml:"overlay"`
	Maps        []model.MapInfo   `yaml:"maps"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
}

// PathsConfig holds the runtime data folder and file names inside it.
type PathsConfig struct {
	DataDir  string `yaml:"data_dir"` // Empty: resolved per platform
	Dataset  string `yaml:"dataset"`
	Styles   string `yaml:"styles"`
	Settings string `yaml:"settings"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// PersistenceConfig selects where user settings are stored.
type PersistenceConfig struct {
	Backend  string   `yaml:"backend"` // "file", "sqlite"
	DBPath   string   `yaml:"db_path"` // Relative paths live in the data dir
	Debounce Duration `yaml:"debounce"`
}

// OverlayConfig holds projection and interaction tuning.
type OverlayConfig struct {
	ReferenceWidth float64 `yaml:"reference_width"` // Overlay width at which style radii are used as-is
	HitRadius      float64 `yaml:"hit_radius"`      // Pixel tolerance for hide-under-cursor
	ScaleMin       float64 `yaml:"scale_min"`
	ScaleMax       float64 `yaml:"scale_max"`
	ScaleStep      float64 `yaml:"scale_step"`
}

// DefaultsConfig seeds a fresh user configuration.
type DefaultsConfig struct {
	ScreenWidth  int               `yaml:"screen_width"`
	ScreenHeight int               `yaml:"screen_height"`
	HiddenPOIs   []model.HiddenKey `yaml:"hidden_pois"` // Empty by default; entries are opt-in
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Dataset:  "data.json",
			Styles:   "poiData.json",
			Settings: "config.json",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:       "./logs/huntoverlay.log",
				Level:      "INFO",
				MaxSizeMB:  10,
				MaxBackups: 3,
			},
		},
		Persistence: PersistenceConfig{
			Backend:  "file",
			DBPath:   "settings.db",
			Debounce: Duration(400 * time.Millisecond),
		},
		Overlay: OverlayConfig{
			ReferenceWidth: 1000,
			HitRadius:      10,
			ScaleMin:       0.10,
			ScaleMax:       5.00,
			ScaleStep:      0.05,
		},
		// Release order; numeric switching follows this order.
		Maps: []model.MapInfo{
			{ID: "stillwater_bayou", Name: "Stillwater Bayou"},
			{ID: "lawson_delta", Name: "Lawson Delta"},
			{ID: "desalle", Name: "DeSalle"},
			{ID: "mammons_gulch", Name: "Mammon's Gulch"},
		},
		Defaults: DefaultsConfig{
			ScreenWidth:  1920,
			ScreenHeight: 1080,
			HiddenPOIs:   []model.HiddenKey{},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the overlay cannot run with.
func (c *Config) Validate() error {
	if len(c.Maps) == 0 {
		return fmt.Errorf("config: at least one map is required")
	}
	seen := make(map[string]bool, len(c.Maps))
	for _, m := range c.Maps {
		if m.ID == "" {
			return fmt.Errorf("config: map with empty id")
		}
		if seen[m.ID] {
			return fmt.Errorf("config: duplicate map id '%s'", m.ID)
		}
		seen[m.ID] = true
	}
	if c.Overlay.ScaleMin <= 0 || c.Overlay.ScaleMax < c.Overlay.ScaleMin {
		return fmt.Errorf("config: invalid scale bounds [%v, %v]", c.Overlay.ScaleMin, c.Overlay.ScaleMax)
	}
	if c.Overlay.ReferenceWidth <= 0 {
		return fmt.Errorf("config: reference_width must be positive")
	}
	if c.Persistence.Debounce < 0 {
		return fmt.Errorf("config: debounce must not be negative")
	}
	switch c.Persistence.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("config: unknown persistence backend '%s'", c.Persistence.Backend)
	}
	return nil
}

// MapIDs returns the configured map ids in release order.
func (c *Config) MapIDs() []string {
	ids := make([]string, 0, len(c.Maps))
	for _, m := range c.Maps {
		ids = append(ids, m.ID)
	}
	return ids
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# HuntOverlay Configuration
# ------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# User state (categories, colors, hidden POIs, rectangle) is NOT stored here,
# it lives in paths.settings inside the data dir.

`)
	data = append(header, data...)

	reBackend := regexp.MustCompile(`(?m)^(\s+)backend:`)
	data = reBackend.ReplaceAll(data, []byte("${1}# Options: file, sqlite\n${1}backend:"))

	reRef := regexp.MustCompile(`(?m)^(\s+)reference_width:`)
	data = reRef.ReplaceAll(data, []byte("${1}# Style radii are in pixels at this overlay width\n${1}reference_width:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
