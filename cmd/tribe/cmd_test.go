// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands end to end against a temp SQLite data directory.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/tribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := parseTime("2025-01-31 08:30", loc)
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if want := time.Date(2025, 1, 31, 6, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseTime = %v, want %v", got.UTC(), want)
	}
}

func TestParseExercise(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		sets    int
		volume  float64
		wantErr bool
	}{
		{input: "Squat:100x5,100x5", name: "Squat", sets: 2, volume: 1000},
		{input: "Bench: 80x8", name: "Bench", sets: 1, volume: 640},
		{input: "Plank", name: "Plank"},
		{input: ":100x5", wantErr: true},
		{input: "Squat:100-5", wantErr: true},
		{input: "Squat:heavyx5", wantErr: true},
		{input: "Squat:100xmany", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ex, err := parseExercise(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, ex.Name)
			assert.Len(t, ex.Sets, tt.sets)
			l := models.NewWorkoutLog("x", models.KindPlanA).WithExercise(ex)
			assert.InDelta(t, tt.volume, l.Volume(), 0.001)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░", progressBar(0, 4))
	assert.Equal(t, "██░░", progressBar(50, 4))
	assert.Equal(t, "████", progressBar(150, 4))
	assert.Equal(t, "░░░░", progressBar(-10, 4))
}

func TestRootCmdRegistersCommands(t *testing.T) {
	if rootCmd.Use != "tribe" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "tribe")
	}
	want := []string{"log", "delete", "list", "status", "stats", "badges", "history",
		"shop", "gift", "quests", "commit", "export", "import", "migrate", "mcp", "serve", "sync", "install-skill"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, f := range []string{"user", "user-id", "tribe", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(f) == nil {
			t.Errorf("persistent flag --%s missing", f)
		}
	}
}

func TestLogCmdFlags(t *testing.T) {
	for _, f := range []string{"duration", "calories", "vibes", "activity", "at", "exercise"} {
		if logCmd.Flags().Lookup(f) == nil {
			t.Errorf("log flag --%s missing", f)
		}
	}
	if logCmd.Flags().ShorthandLookup("d") == nil {
		t.Error("expected -d shorthand for --duration")
	}
}

// resetFlags restores every package-level flag variable between runs.
func resetFlags() {
	flagUser, flagUserID, flagTribe, flagVerbose = "", "", "", false
	logDuration, logCalories, logVibes = 0, 0, 0
	logActivity, logAt, logExercises = "", "", nil
	listKind, listLimit, listAll = "", 20, false
	historyLimit, historyLedger = 20, false
	statsRefresh = false
	giftList = false
	exportOutput = ""
	migrateTo, migrateDataDir, migratePostgresURL = "", "", ""
	migrateDryRun, migrateForce = false, false
}

// setupTestCLI points config and data at temp directories.
func setupTestCLI(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRIBE_DATA_DIR", dataDir)
	for _, k := range []string{"TRIBE_BACKEND", "TRIBE_POSTGRES_URL", "TRIBE_REDIS_ADDR", "TRIBE_REDIS_DB"} {
		t.Setenv(k, "")
	}
	t.Setenv("TRIBE_TIMEZONE", "UTC")
	t.Cleanup(func() { _ = closeAll() })
	return dataDir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("tribe %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestLogStatusDeleteFlow(t *testing.T) {
	setupTestCLI(t)
	now := time.Now().UTC().Format("2006-01-02 15:04")

	out := mustRun(t, "log", "A", "-d", "45", "--at", now, "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "Logged Plan A")
	assert.Contains(t, out, "First Step unlocked")

	out = mustRun(t, "status", "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "alice @ crew")
	assert.Contains(t, out, "Streak  1 day(s)")
	assert.Contains(t, out, "First Step")

	out = mustRun(t, "list", "--user", "alice", "--tribe", "crew")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	id := lines[0][:8]

	out = mustRun(t, "delete", id, "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "Deleted Plan A")
	assert.Contains(t, out, "revoked First Step")

	out = mustRun(t, "list", "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "No workouts found.")
}

func TestLogShortSessionWarning(t *testing.T) {
	setupTestCLI(t)
	out := mustRun(t, "log", "custom", "--activity", "Stretching", "-d", "15", "--user", "alice")
	assert.Contains(t, out, "does not count toward your streak")
}

func TestLogErrors(t *testing.T) {
	setupTestCLI(t)

	_, err := runCLI(t, "log", "A", "-d", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user set")

	_, err = runCLI(t, "log", "commitment", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tribe commit")

	_, err = runCLI(t, "log", "zumba", "--user", "alice")
	assert.Error(t, err)

	_, err = runCLI(t, "log", "A", "--at", "yesterday", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timestamp")

	_, err = runCLI(t, "delete", "ffffffff", "--user", "alice")
	assert.Error(t, err)
}

func TestProfileFromConfig(t *testing.T) {
	setupTestCLI(t)
	dir := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tribe"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tribe", "config.json"),
		[]byte(`{"profile": {"user": "carol", "tribe": "crew"}}`), 0600))

	out := mustRun(t, "status")
	assert.Contains(t, out, "carol @ crew")

	out = mustRun(t, "status", "--user", "dave")
	assert.Contains(t, out, "dave @ crew")
}

func TestHistoryAndStats(t *testing.T) {
	setupTestCLI(t)
	now := time.Now().UTC()
	for d := 2; d >= 0; d-- {
		at := now.AddDate(0, 0, -d).Format("2006-01-02 15:04")
		mustRun(t, "log", "A", "-d", "45", "--at", at, "--user", "alice", "--tribe", "crew")
	}
	mustRun(t, "log", "B", "-d", "40", "--user", "bob", "--tribe", "crew")

	out := mustRun(t, "history", "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "+20 streak (day 3)")
	assert.Contains(t, out, "over 3 workout(s)")

	out = mustRun(t, "history", "--ledger", "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "workout")

	out = mustRun(t, "stats", "--tribe", "crew", "--refresh")
	assert.Contains(t, out, "Tribe crew")
	assert.Contains(t, out, "Team streak")
	assert.Contains(t, out, "Leaderboard")
	assert.Contains(t, out, " 1. alice")
}

func TestBadgesCmd(t *testing.T) {
	setupTestCLI(t)
	mustRun(t, "log", "A", "-d", "45", "--user", "alice")

	out := mustRun(t, "badges", "--user", "alice")
	for _, b := range models.Badges {
		assert.Contains(t, out, b.Title)
	}
	assert.Contains(t, out, "unlocked")
}

func TestShopGiftAndCommit(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "shop", "list", "--user", "alice")
	assert.Contains(t, out, "deep_forest")
	assert.Contains(t, out, "equipped")

	_, err := runCLI(t, "shop", "buy", "deep_forest", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough points")

	_, err = runCLI(t, "shop", "equip", "deep_forest", "--user", "alice")
	assert.Error(t, err)

	out = mustRun(t, "shop", "buy", "default", "--user", "alice")
	assert.Contains(t, out, "Equipped default")

	_, err = runCLI(t, "gift", "bob", "fire", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in inventory")

	_, err = runCLI(t, "gift", "bob", "--user", "alice")
	assert.Error(t, err)

	out = mustRun(t, "gift", "--list", "--user", "alice")
	assert.Contains(t, out, "No gifts yet.")

	out = mustRun(t, "commit", "2030-01-01 07:00", "--user", "alice")
	assert.Contains(t, out, "Pledged Tue 2030-01-01 07:00")

	out = mustRun(t, "status", "--user", "alice")
	assert.Contains(t, out, "Pledged 2030-01-01 07:00")
}

func TestQuestsFlow(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "log", "A", "-d", "45", "--user", "alice")
	assert.Contains(t, out, "Quest complete: First Blood (+100 XP, +50 points)")

	out = mustRun(t, "quests", "--user", "alice")
	assert.Contains(t, out, "Daily quests")
	assert.Contains(t, out, "Getting started")
	assert.Contains(t, out, "Identity")

	out = mustRun(t, "quests", "done", "onboarding_profile", "--user", "alice")
	assert.Contains(t, out, "Quest complete: Identity (+50 XP, +20 points)")

	out = mustRun(t, "quests", "done", "onboarding_profile", "--user", "alice")
	assert.Contains(t, out, "already complete")

	_, err := runCLI(t, "quests", "done", "onboarding_workout", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completes automatically")

	_, err = runCLI(t, "quests", "done", "juggle", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown quest")
}

func TestExportImport(t *testing.T) {
	setupTestCLI(t)
	mustRun(t, "log", "A", "-d", "45", "--user", "alice", "--tribe", "crew")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := mustRun(t, "export", "json", "-o", backup)
	assert.Contains(t, out, "Exported to")

	out = mustRun(t, "export", "yaml")
	assert.Contains(t, out, "logs:")

	out = mustRun(t, "export", "markdown", "--tribe", "crew")
	assert.Contains(t, out, "## alice")
	assert.Contains(t, out, "| Plan A |")

	_, err := runCLI(t, "export", "csv")
	assert.Error(t, err)

	t.Setenv("TRIBE_DATA_DIR", t.TempDir())
	out = mustRun(t, "import", backup)
	assert.Contains(t, out, "Imported from")

	out = mustRun(t, "list", "--user", "alice", "--tribe", "crew")
	assert.Contains(t, out, "Plan A")
}

func TestMigrateToSQLite(t *testing.T) {
	setupTestCLI(t)
	mustRun(t, "log", "A", "-d", "45", "--user", "alice", "--tribe", "crew")

	_, err := runCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to is required")

	out := mustRun(t, "migrate", "--to", "sqlite", "--data-dir", t.TempDir(), "--dry-run")
	assert.Contains(t, out, "Would copy 1 logs, 1 states")

	dst := t.TempDir()
	out = mustRun(t, "migrate", "--to", "sqlite", "--data-dir", dst)
	assert.Contains(t, out, "Migrated 1 logs, 1 states")

	_, err = runCLI(t, "migrate", "--to", "sqlite", "--data-dir", dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")
}

func TestSyncRequiresCharmBackend(t *testing.T) {
	setupTestCLI(t)
	_, err := runCLI(t, "sync", "now")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charm backend")
}
