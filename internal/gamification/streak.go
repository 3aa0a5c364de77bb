// ABOUTME: Personal streak calculation over workout logs with a grace window.
// ABOUTME: Pure functions; calendar dates are taken in the configured location.
package gamification

import (
	"sort"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// DefaultGraceDays is the largest gap between two streak days that keeps the
// streak alive. A gap of 3 means two full rest days.
const DefaultGraceDays = 3

// StreakOptions controls ComputeStreak.
type StreakOptions struct {
	// Sorted declares the input already sorted newest first, skipping the sort.
	Sorted bool
	// GraceDays overrides DefaultGraceDays when positive.
	GraceDays int
	// Location defines calendar days. Defaults to time.Local.
	Location *time.Location
}

func (o StreakOptions) grace() int {
	if o.GraceDays > 0 {
		return o.GraceDays
	}
	return DefaultGraceDays
}

// StreakResult is the current streak and the logs that make it up.
type StreakResult struct {
	Count int
	// Logs are the contributing eligible logs, newest first.
	Logs []*models.WorkoutLog
}

// ComputeStreak returns the user's current streak as of now.
//
// Ineligible logs (commitments, Custom under 30 minutes) are skipped entirely.
// The newest eligible day must be within the grace window of today or the
// streak is 0. Walking back, same-day logs merge, gaps within the grace window
// extend the streak, and the first larger gap ends the walk.
func ComputeStreak(logs []*models.WorkoutLog, now time.Time, opts StreakOptions) StreakResult {
	loc := locationOrLocal(opts.Location)
	grace := opts.grace()

	eligible := eligibleLogs(logs)
	if len(eligible) == 0 {
		return StreakResult{}
	}
	if !opts.Sorted {
		sortNewestFirst(eligible)
	}

	today := dayOf(now, loc)
	prev := dayOf(eligible[0].Date, loc)
	if daysBetween(prev, today) > grace {
		return StreakResult{}
	}

	result := StreakResult{Count: 1, Logs: []*models.WorkoutLog{eligible[0]}}
	for _, l := range eligible[1:] {
		d := dayOf(l.Date, loc)
		gap := daysBetween(d, prev)
		switch {
		case gap == 0:
			result.Logs = append(result.Logs, l)
		case gap <= grace:
			result.Count++
			result.Logs = append(result.Logs, l)
			prev = d
		default:
			return result
		}
	}
	return result
}

// LongestStreak returns the best streak ever reached in the history,
// using the same grace rule but without anchoring to today.
func LongestStreak(logs []*models.WorkoutLog, opts StreakOptions) int {
	loc := locationOrLocal(opts.Location)
	grace := opts.grace()

	eligible := eligibleLogs(logs)
	if len(eligible) == 0 {
		return 0
	}
	if !opts.Sorted {
		sortNewestFirst(eligible)
	}

	best, run := 1, 1
	prev := dayOf(eligible[0].Date, loc)
	for _, l := range eligible[1:] {
		d := dayOf(l.Date, loc)
		gap := daysBetween(d, prev)
		switch {
		case gap == 0:
			continue
		case gap <= grace:
			run++
		default:
			run = 1
		}
		prev = d
		best = max(best, run)
	}
	return best
}

func eligibleLogs(logs []*models.WorkoutLog) []*models.WorkoutLog {
	out := make([]*models.WorkoutLog, 0, len(logs))
	for _, l := range logs {
		if l != nil && l.IsStreakEligible() {
			out = append(out, l)
		}
	}
	return out
}

func sortNewestFirst(logs []*models.WorkoutLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})
}

func sortOldestFirst(logs []*models.WorkoutLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// dayOf returns local midnight of t's calendar date.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b (positive when b is later).
// Computed on UTC dates so DST transitions never produce 23- or 25-hour days.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
