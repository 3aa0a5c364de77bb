// ABOUTME: Tests for JSON and YAML export/import.
// ABOUTME: JSON must round-trip into an empty repository; YAML is checked for shape.
package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/tribe/internal/models"
	"gopkg.in/yaml.v3"
)

func TestExportJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seedRepository(t, setupTestDB(t))

	raw, err := ExportJSON(ctx, src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Version != ExportVersion || data.Tool != "tribe" {
		t.Errorf("unexpected header: version=%q tool=%q", data.Version, data.Tool)
	}
	if data.CatalogVersion != models.CatalogVersion {
		t.Errorf("catalog version = %d, want %d", data.CatalogVersion, models.CatalogVersion)
	}

	dst := setupTestDB(t)
	if err := ImportJSON(ctx, dst, raw); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	assertSeeded(t, dst, &MigrateSummary{
		Logs: len(data.Logs), States: len(data.States), XPLogs: len(data.XPLogs),
		PointLogs: len(data.PointLogs), Gifts: len(data.Gifts),
	})
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	if err := ImportJSON(context.Background(), setupTestDB(t), []byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestExportYAML(t *testing.T) {
	src := seedRepository(t, setupTestDB(t))

	raw, err := ExportYAML(context.Background(), src)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var out yamlExport
	if err := yaml.Unmarshal(raw, &out); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if len(out.Logs["alice"]) != 1 || len(out.Logs["bob"]) != 1 {
		t.Errorf("expected one log per user, got %+v", out.Logs)
	}
	if got := out.Logs["bob"][0].Activity; got != "Rowing" {
		t.Errorf("activity = %q, want Rowing", got)
	}
	if got := out.Logs["alice"][0].Calories; got != 400 {
		t.Errorf("calories = %d, want 400", got)
	}
	standing, ok := out.Users["alice"]
	if !ok {
		t.Fatal("expected alice standing")
	}
	if standing.Points != 110 || standing.XP != 200 || standing.Theme != models.DefaultTheme {
		t.Errorf("standing mismatch: %+v", standing)
	}
}

func TestExportMarkdown(t *testing.T) {
	ctx := context.Background()
	repo := seedRepository(t, setupTestDB(t))

	md, err := ExportMarkdown(ctx, repo, LogFilter{}, time.UTC)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	for _, want := range []string{"# Tribe Workouts", "## alice", "## bob", "Rowing", "| 400 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "## alice") > strings.Index(md, "## bob") {
		t.Error("users should be sorted by name")
	}

	md, err = ExportMarkdown(ctx, repo, LogFilter{User: "nobody", TribeID: "crew"}, time.UTC)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if !strings.Contains(md, "_No workouts._") || !strings.Contains(md, "Tribe: **crew**") {
		t.Errorf("unexpected empty export:\n%s", md)
	}
}
