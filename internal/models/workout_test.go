// ABOUTME: Tests for WorkoutLog, WorkoutKind, and gamification state helpers.
// ABOUTME: Validates builders, eligibility, volume, and state migration.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewWorkoutLog(t *testing.T) {
	w := NewWorkoutLog("Ana", KindPlanA)

	if w.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if w.User != "Ana" {
		t.Errorf("User = %s, want Ana", w.User)
	}
	if w.Date.IsZero() {
		t.Error("expected Date to be set")
	}
}

func TestWorkoutLogBuilders(t *testing.T) {
	w := NewWorkoutLog("Ana", KindCustom).
		WithDuration(45).
		WithCalories(320).
		WithVibes(7).
		WithTribe("t1").
		WithActivity("Running")

	if w.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", w.DurationMinutes)
	}
	if w.Calories == nil || *w.Calories != 320 {
		t.Error("expected Calories to be 320")
	}
	if w.Vibes == nil || *w.Vibes != 7 {
		t.Error("expected Vibes to be 7")
	}
	if w.Title() != "Running" {
		t.Errorf("Title() = %q, want Running", w.Title())
	}
}

func TestParseWorkoutKind(t *testing.T) {
	tests := map[string]WorkoutKind{
		"A":          KindPlanA,
		"plan-b":     KindPlanB,
		"Custom":     KindCustom,
		"commitment": KindCommitment,
	}
	for in, want := range tests {
		got, err := ParseWorkoutKind(in)
		if err != nil {
			t.Fatalf("ParseWorkoutKind(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseWorkoutKind(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseWorkoutKind("zumba"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestWorkoutKindJSON(t *testing.T) {
	w := NewWorkoutLog("Ana", KindPlanB)
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got WorkoutLog
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Kind != KindPlanB {
		t.Errorf("Kind = %v, want B", got.Kind)
	}
}

func TestIsStreakEligible(t *testing.T) {
	tests := []struct {
		name string
		log  *WorkoutLog
		want bool
	}{
		{"plan a", NewWorkoutLog("u", KindPlanA).WithDuration(10), true},
		{"plan b", NewWorkoutLog("u", KindPlanB), true},
		{"custom long", NewWorkoutLog("u", KindCustom).WithDuration(30), true},
		{"custom short", NewWorkoutLog("u", KindCustom).WithDuration(29), false},
		{"commitment", NewWorkoutLog("u", KindCommitment).WithDuration(60), false},
	}
	for _, tt := range tests {
		if got := tt.log.IsStreakEligible(); got != tt.want {
			t.Errorf("%s: IsStreakEligible() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVolumeCountsCompletedSetsOnly(t *testing.T) {
	w := NewWorkoutLog("u", KindPlanA).WithExercise(Exercise{
		Name: "Bench Press",
		Sets: []Set{
			{Weight: 100, Reps: 10, Completed: true},
			{Weight: 1, Reps: 10, Completed: true},
			{Weight: 500, Reps: 10, Completed: false},
		},
	})
	if got := w.Volume(); got != 1010 {
		t.Errorf("Volume() = %v, want 1010", got)
	}
}

func TestStateNormalizeMigratesLegacyCommitment(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &UserGamificationState{
		Badges: []string{"first_step", "committed_1709283600000"},
		Points: 120,
	}
	s.Normalize()

	if len(s.Badges) != 1 || s.Badges[0] != "first_step" {
		t.Errorf("Badges = %v, want [first_step]", s.Badges)
	}
	if s.ActiveCommitment == nil || !s.ActiveCommitment.Equal(at) {
		t.Errorf("ActiveCommitment = %v, want %v", s.ActiveCommitment, at)
	}
	if s.XP() != 120 {
		t.Errorf("XP() = %d, want 120 (seeded from points)", s.XP())
	}
	if !s.HasTheme(DefaultTheme) {
		t.Error("expected default theme to be unlocked")
	}
}

func TestStateClampsAtZero(t *testing.T) {
	s := NewGamificationState()
	s.AddPoints(30)
	s.AddXP(30)
	s.AddPoints(-100)
	s.AddXP(-100)
	if s.Points != 0 || s.XP() != 0 {
		t.Errorf("got points=%d xp=%d, want 0/0", s.Points, s.XP())
	}
}

func TestStateInventory(t *testing.T) {
	s := NewGamificationState()
	s.AddItem("fire")
	s.AddItem("fire")

	if !s.TakeItem("fire") {
		t.Fatal("expected TakeItem to succeed")
	}
	if s.Inventory["fire"] != 1 {
		t.Errorf("count = %d, want 1", s.Inventory["fire"])
	}
	s.TakeItem("fire")
	if _, ok := s.Inventory["fire"]; ok {
		t.Error("expected entry to be removed at zero")
	}
	if s.TakeItem("fire") {
		t.Error("expected TakeItem to fail when not held")
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewGamificationState()
	s.AddBadge(BadgeFirstStep)
	s.AddItem("fist_bump")

	c := s.Clone()
	c.AddBadge(BadgeNightOwl)
	c.AddItem("fist_bump")
	c.AddXP(50)

	if s.HasBadge(BadgeNightOwl) {
		t.Error("clone mutation leaked into badges")
	}
	if s.Inventory["fist_bump"] != 1 {
		t.Error("clone mutation leaked into inventory")
	}
	if s.XP() != 0 {
		t.Error("clone mutation leaked into lifetime XP")
	}
}

func TestCatalogs(t *testing.T) {
	if len(Badges) != 16 {
		t.Errorf("len(Badges) = %d, want 16", len(Badges))
	}
	if len(GiftItems) != 4 {
		t.Errorf("len(GiftItems) = %d, want 4", len(GiftItems))
	}
	if _, ok := BadgeByID(BadgeTeamPlayer); !ok {
		t.Error("expected team_player in catalog")
	}
	if th, ok := ThemeByID(DefaultTheme); !ok || th.Price != 0 {
		t.Error("expected free default theme")
	}
}

func TestCatalogEntries(t *testing.T) {
	for _, id := range []string{"fist_bump", "protein", "fire", "medal"} {
		if _, ok := GiftByID(id); !ok {
			t.Errorf("gift %q missing from catalog", id)
		}
	}

	prices := map[string]int{"deep_forest": 200, "jungle_night": 500, "volcano": 1000}
	for id, want := range prices {
		th, ok := ThemeByID(id)
		if !ok {
			t.Errorf("theme %q missing from catalog", id)
			continue
		}
		if th.Price != want {
			t.Errorf("theme %q price = %d, want %d", id, th.Price, want)
		}
	}

	rarities := map[string]Rarity{
		BadgeEarlyBird:   RarityRare,
		BadgeNightOwl:    RarityRare,
		BadgeCenturyClub: RarityLegendary,
		BadgeLongHaul:    RarityLegendary,
		BadgeTeamPlayer:  RarityCommon,
		BadgeGoalCrusher: RarityRare,
		BadgeHeavyLifter: RarityLegendary,
		BadgeWeekWarrior: RarityCommon,
	}
	for id, want := range rarities {
		b, _ := BadgeByID(id)
		if b.Rarity != want {
			t.Errorf("badge %q rarity = %q, want %q", id, b.Rarity, want)
		}
	}
}
