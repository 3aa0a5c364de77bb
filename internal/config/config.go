// ABOUTME: Tribe configuration management with backend selection.
// ABOUTME: Handles settings, env overrides, and storage and cache factory functions.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/cache"
	"github.com/harperreed/tribe/internal/charm"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
)

const (
	defaultCacheTTL = 5 * time.Minute
	defaultHTTPAddr = ":8080"
)

// Profile is the default identity used when CLI flags are omitted.
type Profile struct {
	User   string `json:"user,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Tribe  string `json:"tribe,omitempty"`
}

// Config stores tribe tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "charm", or "postgres".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. SQLite puts tribe.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/tribe.
	DataDir string `json:"data_dir,omitempty"`

	PostgresURL string `json:"postgres_url,omitempty"`
	CharmHost   string `json:"charm_host,omitempty"`

	// Redis enables the shared cache tier when RedisAddr is set.
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`

	// Timezone is an IANA name used for calendar-day math. Empty means Local.
	Timezone string `json:"timezone,omitempty"`

	Targets      *models.TeamTargets           `json:"targets,omitempty"`
	TribeTargets map[string]models.TeamTargets `json:"tribe_targets,omitempty"`

	// CacheTTL is a Go duration string such as "5m".
	CacheTTL string `json:"cache_ttl,omitempty"`
	HTTPAddr string `json:"http_addr,omitempty"`

	Profile *Profile `json:"profile,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TeamTargets returns the default goals and any per-tribe overrides.
func (c *Config) TeamTargets() (models.TeamTargets, map[string]models.TeamTargets) {
	defaults := models.DefaultTeamTargets
	if c.Targets != nil {
		defaults = *c.Targets
	}
	return defaults, c.TribeTargets
}

// GetCacheTTL parses CacheTTL, falling back to five minutes.
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return defaultCacheTTL
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return defaultCacheTTL
	}
	return d
}

// GetHTTPAddr returns the listen address for the HTTP API.
func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return defaultHTTPAddr
	}
	return c.HTTPAddr
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.OpenDir(c.GetDataDir())
	case "charm":
		return charm.InitClient(c.CharmHost)
	case "postgres":
		if c.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend requires postgres_url")
		}
		return storage.OpenPostgres(ctx, c.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// OpenCache builds the two-tier cache. Without RedisAddr only the memory tier
// is used. The returned close func releases the Redis connection.
func (c *Config) OpenCache(ctx context.Context, logger *log.Logger) (*cache.Cache, func() error, error) {
	opts := []cache.Option{cache.WithTTL(c.GetCacheTTL())}
	if logger != nil {
		opts = append(opts, cache.WithLogger(logger))
	}
	if c.RedisAddr == "" {
		return cache.New(opts...), func() error { return nil }, nil
	}

	rdb, err := cache.NewRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	backend := cache.NewRedisBackend(rdb)
	opts = append(opts, cache.WithBackend(backend))
	return cache.New(opts...), backend.Close, nil
}

// DefaultProfile returns the configured identity, or an empty one.
func (c *Config) DefaultProfile() Profile {
	if c.Profile == nil {
		return Profile{}
	}
	return *c.Profile
}

// ApplyEnv overrides fields from TRIBE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TRIBE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TRIBE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TRIBE_POSTGRES_URL"); v != "" {
		c.PostgresURL = v
	}
	if v := os.Getenv("TRIBE_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("TRIBE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}
	if v := os.Getenv("TRIBE_TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "tribe", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(GetConfigPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
