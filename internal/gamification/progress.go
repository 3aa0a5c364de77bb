// ABOUTME: Read-only views of a user's standing: streak, mood, risk, level, breakdown.
// ABOUTME: Pure helpers plus Engine methods that load history from the store.
package gamification

import (
	"context"
	"sort"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// Mood summarizes how a user's streak is going.
type Mood string

const (
	MoodTired  Mood = "tired"
	MoodNormal Mood = "normal"
	MoodFire   Mood = "fire"
)

// MoodFor maps a current streak to a mood.
func MoodFor(streak int) Mood {
	switch {
	case streak <= 0:
		return MoodTired
	case streak >= 3:
		return MoodFire
	default:
		return MoodNormal
	}
}

// AtRisk reports whether the streak is alive but one more rest day ends it:
// the latest eligible log is exactly 2 or 3 calendar days old.
func AtRisk(logs []*models.WorkoutLog, now time.Time, opts StreakOptions) bool {
	loc := locationOrLocal(opts.Location)
	eligible := eligibleLogs(logs)
	if len(eligible) == 0 {
		return false
	}
	if !opts.Sorted {
		sortNewestFirst(eligible)
	}
	gap := daysBetween(dayOf(eligible[0].Date, loc), dayOf(now, loc))
	return gap >= 2 && gap <= opts.grace()
}

// Progress is a user's full standing.
type Progress struct {
	Profile       models.UserProfile            `json:"profile"`
	State         *models.UserGamificationState `json:"state"`
	Level         LevelProgress                 `json:"level"`
	Rank          string                        `json:"rank"`
	Streak        int                           `json:"streak"`
	LongestStreak int                           `json:"longest_streak"`
	Mood          Mood                          `json:"mood"`
	AtRisk        bool                          `json:"at_risk"`
	Workouts      int                           `json:"workouts"`
}

// Progress loads state and history and derives the user's standing.
func (e *Engine) Progress(ctx context.Context, profile models.UserProfile) (*Progress, error) {
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return nil, err
	}

	now := e.now()
	opts := e.streakOptions()
	streak := ComputeStreak(history, now, opts).Count
	level := GetLevelProgress(state.XP())
	return &Progress{
		Profile:       profile,
		State:         state,
		Level:         level,
		Rank:          Rank(level.Level),
		Streak:        streak,
		LongestStreak: LongestStreak(history, opts),
		Mood:          MoodFor(streak),
		AtRisk:        AtRisk(history, now, opts),
		Workouts:      len(history),
	}, nil
}

// Streak returns the user's current streak.
func (e *Engine) Streak(ctx context.Context, profile models.UserProfile) (StreakResult, error) {
	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return StreakResult{}, err
	}
	return ComputeStreak(history, e.now(), e.streakOptions()), nil
}

// Mood returns the user's mood.
func (e *Engine) Mood(ctx context.Context, profile models.UserProfile) (Mood, error) {
	s, err := e.Streak(ctx, profile)
	if err != nil {
		return "", err
	}
	return MoodFor(s.Count), nil
}

// StreakAtRisk reports whether the user's streak ends after one more rest day.
func (e *Engine) StreakAtRisk(ctx context.Context, profile models.UserProfile) (bool, error) {
	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return false, err
	}
	return AtRisk(history, e.now(), e.streakOptions()), nil
}

// LogBreakdown pairs a log with the XP it earned.
type LogBreakdown struct {
	Log *models.WorkoutLog `json:"log"`
	XPBreakdown
}

// Breakdown returns the per-log XP of a user's history, newest first.
func (e *Engine) Breakdown(ctx context.Context, profile models.UserProfile) ([]LogBreakdown, error) {
	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return nil, err
	}
	byID := Breakdown(history, BreakdownOptions{SortedDesc: true, GraceDays: e.grace, Location: e.loc})
	out := make([]LogBreakdown, 0, len(history))
	for _, l := range history {
		out = append(out, LogBreakdown{Log: l, XPBreakdown: byID[l.ID]})
	}
	return out, nil
}

// Leaderboard returns every user in a tribe ordered by lifetime XP.
func (e *Engine) Leaderboard(ctx context.Context, tribeID string) ([]LeaderboardEntry, error) {
	states, err := e.store.GamificationStates(ctx, tribeID)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(states))
	for user, stored := range states {
		if stored == nil {
			continue
		}
		s := stored.Clone()
		s.Normalize()
		xp := s.XP()
		level := CalculateLevel(xp)
		out = append(out, LeaderboardEntry{
			User:   user,
			XP:     xp,
			Points: s.Points,
			Level:  level,
			Rank:   Rank(level),
			Badges: len(s.Badges),
		})
	}
	sortLeaderboard(out)
	return out, nil
}

// LeaderboardEntry is one row of a tribe leaderboard.
type LeaderboardEntry struct {
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
	Rank   string `json:"rank"`
	Badges int    `json:"badges"`
}

func sortLeaderboard(rows []LeaderboardEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].XP != rows[j].XP {
			return rows[i].XP > rows[j].XP
		}
		return rows[i].User < rows[j].User
	})
}
