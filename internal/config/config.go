// Package config resolves where pharmintel keeps its data and which demo
// pipeline it runs, from defaults, <data dir>/config.yaml and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/timeline"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config.yaml"
	envPrefix  = "PHARMINTEL_"
)

type Config struct {
	DataDir       string `yaml:"-"`
	DBPath        string `yaml:"db_path"`
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	Preset        string `yaml:"preset"`
	Scenario      string `yaml:"scenario"`
	FailurePolicy string `yaml:"failure_policy"` // empty: the scenario decides
	CatalogPath   string `yaml:"catalog"`
	ScenarioDir   string `yaml:"scenario_dir"`
	ExportFormat  string `yaml:"export_format"`
}

// Default returns the configuration rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "pharmintel.db"),
		LogPath:      filepath.Join(dataDir, "pharmintel.log"),
		LogLevel:     "info",
		Preset:       string(demo.PresetNormal),
		Scenario:     string(demo.ScenarioSuccess),
		ScenarioDir:  filepath.Join(dataDir, "scenarios"),
		ExportFormat: string(report.FormatPDF),
	}
}

// Load builds the configuration: defaults, then the optional config file in
// the data directory, then PHARMINTEL_* environment overrides.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dataDir := getEnv(envPrefix+"DATA_DIR", filepath.Join(homeDir, ".pharmintel"))
	return LoadFrom(dataDir)
}

// LoadFrom is Load with an explicit data directory.
func LoadFrom(dataDir string) (*Config, error) {
	cfg := Default(dataDir)

	if err := loadFromFile(cfg, filepath.Join(dataDir, configFile)); err != nil {
		// The file is optional.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.resolvePaths()
	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expanded := os.Expand(string(data), func(key string) string {
		if key == "HOME" || key == "TMPDIR" || strings.HasPrefix(key, envPrefix) {
			return os.Getenv(key)
		}
		return "${" + key + "}"
	})

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	overrides := map[string]*string{
		"PRESET":         &cfg.Preset,
		"SCENARIO":       &cfg.Scenario,
		"FAILURE_POLICY": &cfg.FailurePolicy,
		"CATALOG":        &cfg.CatalogPath,
		"LOG_LEVEL":      &cfg.LogLevel,
		"DB_PATH":        &cfg.DBPath,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*field = v
		}
	}
}

// resolvePaths anchors relative paths from the config file at the data dir.
// It runs before env overrides, which stay relative to the working directory.
func (c *Config) resolvePaths() {
	for _, p := range []*string{&c.DBPath, &c.LogPath, &c.CatalogPath, &c.ScenarioDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.DataDir, *p)
		}
	}
}

// Validate checks every enumerated setting parses.
func (c *Config) Validate() error {
	if _, err := demo.ParsePreset(c.Preset); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := demo.ParseScenario(c.Scenario); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := timeline.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := report.ParseFormat(c.ExportFormat); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EnsureDataDir creates the data and scenario directories.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ScenarioDir, 0755)
}

// DemoConfig converts the settings into a pipeline configuration. Script is
// left for the caller.
func (c *Config) DemoConfig() (demo.Config, error) {
	preset, err := demo.ParsePreset(c.Preset)
	if err != nil {
		return demo.Config{}, err
	}
	scenario, err := demo.ParseScenario(c.Scenario)
	if err != nil {
		return demo.Config{}, err
	}
	cfg := demo.Config{Preset: preset, Scenario: scenario}
	// An unset policy lets the scenario choose.
	if c.FailurePolicy != "" {
		if cfg.Policy, err = timeline.ParseFailurePolicy(c.FailurePolicy); err != nil {
			return demo.Config{}, err
		}
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
