package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Search    Search          `yaml:"search"`
	Feeds     []Feed          `yaml:"feeds"`
	Queries   []string        `yaml:"queries"`
	Cities    []string        `yaml:"cities"`
	Anchoring Anchoring       `yaml:"anchoring"`
	Catalogue []KnownIncident `yaml:"catalogue"`
	Output    Output          `yaml:"output"`
	Server    Server          `yaml:"server"`
	Logging   Logging         `yaml:"logging"`
}

// Search configures the upstream social-media search API.
type Search struct {
	BaseURL    string `yaml:"base_url"`
	TokenEnv   string `yaml:"token_env"`
	PageSize   int    `yaml:"page_size"`
	ThrottleMS int    `yaml:"throttle_ms"`
}

// Feed is an RSS/Atom public-safety alert feed used as a secondary
// post source.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Anchoring tunes the clustering engine.
type Anchoring struct {
	WindowHours    int `yaml:"window_hours"`
	MinClusterSize int `yaml:"min_cluster_size"`
}

// KnownIncident is one curated catalogue entry. Its queries are
// re-issued on every run and the entry is re-scored and re-summarized
// from the fresh posts; only title, location, coordinates, timestamp,
// and description pass through as written here.
type KnownIncident struct {
	Title       string   `yaml:"title"`
	Location    string   `yaml:"location"`
	Lat         float64  `yaml:"lat"`
	Lng         float64  `yaml:"lng"`
	Timestamp   string   `yaml:"timestamp"`
	Description string   `yaml:"description"`
	Queries     []string `yaml:"queries"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for firstwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "firstwatch")
}

// DataDir returns the XDG data directory for firstwatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "firstwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/firstwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'firstwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Search: Search{
			TokenEnv:   "FIRSTWATCH_API_TOKEN",
			PageSize:   50,
			ThrottleMS: 500,
		},
		Anchoring: Anchoring{
			WindowHours:    24,
			MinClusterSize: 1,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Upstream rejects page sizes outside this range.
	if cfg.Search.PageSize < 10 {
		cfg.Search.PageSize = 10
	}
	if cfg.Search.PageSize > 100 {
		cfg.Search.PageSize = 100
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG
// default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
