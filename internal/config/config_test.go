// ABOUTME: Tests for tribe configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, backend selection, and path expansion.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"TRIBE_BACKEND", "TRIBE_DATA_DIR", "TRIBE_POSTGRES_URL", "TRIBE_REDIS_ADDR", "TRIBE_REDIS_DB", "TRIBE_TIMEZONE"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "postgres"}
	if got := cfg.GetBackend(); got != "postgres" {
		t.Errorf("GetBackend() = %q, want %q", got, "postgres")
	}
}

func TestGetDataDir(t *testing.T) {
	if got := (&Config{}).GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
	if got := (&Config{DataDir: "/tmp/tribe-test"}).GetDataDir(); got != "/tmp/tribe-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/tribe-test")
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "tribe-data")
	if got := (&Config{DataDir: "~/tribe-data"}).GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/tribe", filepath.Join(home, "data/tribe")},
		{"data/tribe", "data/tribe"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	loc, err := (&Config{}).Location()
	if err != nil || loc != time.Local {
		t.Errorf("empty timezone: got %v, %v", loc, err)
	}

	loc, err = (&Config{Timezone: "America/New_York"}).Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("Location() = %q", loc)
	}

	if _, err := (&Config{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestTeamTargets(t *testing.T) {
	defaults, perTribe := (&Config{}).TeamTargets()
	if defaults != models.DefaultTeamTargets || perTribe != nil {
		t.Errorf("defaults = %+v, perTribe = %v", defaults, perTribe)
	}

	cfg := &Config{
		Targets:      &models.TeamTargets{Weekly: 3, Monthly: 12, Yearly: 150},
		TribeTargets: map[string]models.TeamTargets{"crew": {Weekly: 10, Monthly: 40, Yearly: 480}},
	}
	defaults, perTribe = cfg.TeamTargets()
	if defaults.Weekly != 3 || perTribe["crew"].Weekly != 10 {
		t.Errorf("defaults = %+v, perTribe = %v", defaults, perTribe)
	}
}

func TestCacheTTLAndHTTPAddr(t *testing.T) {
	if got := (&Config{}).GetCacheTTL(); got != 5*time.Minute {
		t.Errorf("default TTL = %v", got)
	}
	if got := (&Config{CacheTTL: "30s"}).GetCacheTTL(); got != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", got)
	}
	if got := (&Config{CacheTTL: "soon"}).GetCacheTTL(); got != 5*time.Minute {
		t.Errorf("invalid TTL should fall back, got %v", got)
	}
	if got := (&Config{}).GetHTTPAddr(); got != ":8080" {
		t.Errorf("GetHTTPAddr() = %q", got)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if cfg.DefaultProfile() != (Profile{}) {
		t.Errorf("expected empty profile, got %+v", cfg.DefaultProfile())
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolateEnv(t)

	cfg := &Config{
		Backend:  "postgres",
		DataDir:  "/tmp/tribe-data",
		Timezone: "Europe/Berlin",
		Profile:  &Profile{User: "alice", UserID: "u-alice", Tribe: "crew"},
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "postgres" || loaded.DataDir != "/tmp/tribe-data" || loaded.Timezone != "Europe/Berlin" {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
	if got := loaded.DefaultProfile(); got.User != "alice" || got.Tribe != "crew" {
		t.Errorf("profile mismatch: %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	if err := (&Config{Backend: "sqlite", RedisDB: 1}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("TRIBE_BACKEND", "charm")
	t.Setenv("TRIBE_REDIS_ADDR", "localhost:6379")
	t.Setenv("TRIBE_REDIS_DB", "3")
	t.Setenv("TRIBE_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "charm" || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 3 || cfg.Timezone != "UTC" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "nonexistent"))

	if err := (&Config{Backend: "sqlite"}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nonexistent", "tribe")); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := isolateEnv(t)
	configDir := filepath.Join(dir, "tribe")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	dir := isolateEnv(t)
	want := filepath.Join(dir, "tribe", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	dir := t.TempDir()
	repo, err := (&Config{DataDir: dir}).OpenStorage(context.Background())
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(dir, "tribe.db")); os.IsNotExist(err) {
		t.Error("Expected tribe.db to be created")
	}
}

func TestOpenStorageErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := (&Config{Backend: "invalid"}).OpenStorage(ctx); err == nil {
		t.Error("Expected error for invalid backend")
	}
	if _, err := (&Config{Backend: "postgres"}).OpenStorage(ctx); err == nil {
		t.Error("Expected error for postgres without URL")
	}
}

func TestOpenCacheMemoryOnly(t *testing.T) {
	c, closeFn, err := (&Config{}).OpenCache(context.Background(), nil)
	if err != nil {
		t.Fatalf("OpenCache() failed: %v", err)
	}
	defer closeFn()

	c.Set(context.Background(), "k", []byte("v"))
	if got, ok := c.Get(context.Background(), "k"); !ok || string(got) != "v" {
		t.Errorf("memory tier miss: %q, %v", got, ok)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
