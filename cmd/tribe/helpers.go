// ABOUTME: Shared CLI helpers for time parsing, exercise flags, and column output.
// ABOUTME: Used by log, commit, list, and history commands.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// parseTime accepts the common CLI timestamp layouts in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseExercise reads "Name:WEIGHTxREPS,WEIGHTxREPS". Sets given on the
// command line count as completed.
func parseExercise(s string) (models.Exercise, error) {
	name, sets, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Exercise{}, fmt.Errorf("exercise %q: missing name", s)
	}
	ex := models.Exercise{Name: name}
	if !ok || strings.TrimSpace(sets) == "" {
		return ex, nil
	}
	for _, part := range strings.Split(sets, ",") {
		w, r, ok := strings.Cut(strings.TrimSpace(part), "x")
		if !ok {
			return models.Exercise{}, fmt.Errorf("exercise %q: set %q is not WEIGHTxREPS", s, part)
		}
		weight, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return models.Exercise{}, fmt.Errorf("exercise %q: invalid weight %q", s, w)
		}
		reps, err := strconv.Atoi(r)
		if err != nil {
			return models.Exercise{}, fmt.Errorf("exercise %q: invalid reps %q", s, r)
		}
		ex.Sets = append(ex.Sets, models.Set{Weight: weight, Reps: reps, Completed: true})
	}
	return ex, nil
}

func shortID(l *models.WorkoutLog) string {
	return l.ID.String()[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// progressBar renders pct (0-100) as a fixed-width bar.
func progressBar(pct, width int) string {
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
