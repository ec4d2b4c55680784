package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when SKETCHIVE_CONFIG is not set.
const DefaultPath = "sketchive.yaml"

// Config holds all configuration for the application
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Board    BoardConfig    `yaml:"board"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig points the drawing client at the whiteboard store
type StoreConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// Discover looks the store up over mDNS when URL is empty.
	Discover               bool `yaml:"discover"`
	DiscoverTimeoutSeconds int  `yaml:"discover_timeout_seconds"`
}

func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c StoreConfig) DiscoverTimeout() time.Duration {
	return time.Duration(c.DiscoverTimeoutSeconds) * time.Second
}

// BoardConfig selects the board to open and the initial surface
type BoardConfig struct {
	WhiteboardID    int64   `yaml:"whiteboard_id"`
	OwnerID         int64   `yaml:"owner_id"`
	CreateIfMissing bool    `yaml:"create_if_missing"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Color           string  `yaml:"color"`
	LineWidth       float64 `yaml:"line_width"`
}

// ServerConfig holds the store service settings used by `serve`
type ServerConfig struct {
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Advertise      bool     `yaml:"advertise"`
}

// DatabaseConfig selects Postgres for the store service. An empty URL keeps
// everything in memory.
type DatabaseConfig struct {
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Path returns the config file location from SKETCHIVE_CONFIG.
func Path() string {
	if p := os.Getenv("SKETCHIVE_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads .env if present, reads the config file if it exists and
// applies SKETCHIVE_* overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("SKETCHIVE_STORE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("SKETCHIVE_WHITEBOARD_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SKETCHIVE_WHITEBOARD_ID: %w", err)
		}
		cfg.Board.WhiteboardID = id
	}
	if v := os.Getenv("SKETCHIVE_OWNER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SKETCHIVE_OWNER_ID: %w", err)
		}
		cfg.Board.OwnerID = id
	}
	if v := os.Getenv("SKETCHIVE_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("SKETCHIVE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SKETCHIVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Store.URL == "" && !c.Store.Discover {
		c.Store.URL = "http://localhost:8080"
	}
	c.Store.URL = strings.TrimSuffix(c.Store.URL, "/")
	if c.Store.TimeoutSeconds == 0 {
		c.Store.TimeoutSeconds = 10
	}
	if c.Store.DiscoverTimeoutSeconds == 0 {
		c.Store.DiscoverTimeoutSeconds = 3
	}
	if c.Board.Width == 0 {
		c.Board.Width = 1024
	}
	if c.Board.Height == 0 {
		c.Board.Height = 768
	}
	if c.Board.Color == "" {
		c.Board.Color = "#000000"
	}
	if c.Board.LineWidth == 0 {
		c.Board.LineWidth = 3
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Board.Width < 0 || c.Board.Height < 0 {
		return fmt.Errorf("board size must be positive, got %dx%d", c.Board.Width, c.Board.Height)
	}
	if c.Board.LineWidth < 0 {
		return fmt.Errorf("board line_width must be positive, got %g", c.Board.LineWidth)
	}
	if c.Board.WhiteboardID < 0 {
		return fmt.Errorf("board whiteboard_id must not be negative, got %d", c.Board.WhiteboardID)
	}
	if c.Store.TimeoutSeconds < 0 || c.Store.DiscoverTimeoutSeconds < 0 {
		return errors.New("store timeouts must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
