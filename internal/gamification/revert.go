// ABOUTME: Reversal of a deleted log: subtract its base rewards and revoke every badge
// ABOUTME: the remaining history no longer re-derives. Inventory is never touched.
package gamification

import (
	"context"
	"slices"
	"time"

	"github.com/harperreed/tribe/internal/metrics"
	"github.com/harperreed/tribe/internal/models"
)

// commitmentTolerance is how close a deleted commitment log must be to the
// active commitment to clear it.
const commitmentTolerance = time.Second

// retention is what a derivable badge is re-checked against after a deletion.
type retention struct {
	remaining []*models.WorkoutLog // non-commitment, newest first
	team      *models.TeamStats
	now       time.Time
	loc       *time.Location
	opts      StreakOptions
}

type keepRule struct {
	id    string
	check func(r retention) bool
}

// keepRules re-derive the badges that follow from history and tribe stats.
// Every held badge without a passing rule is revoked.
var keepRules = []keepRule{
	{models.BadgeFirstStep, func(r retention) bool { return len(r.remaining) > 0 }},
	{models.BadgeWeekWarrior, func(r retention) bool {
		return countSince(r.remaining, r.now.Add(-7*24*time.Hour), r.now) >= weekWarriorLogs
	}},
	{models.BadgeEarlyBird, func(r retention) bool {
		return anyLog(r.remaining, func(l *models.WorkoutLog) bool { return isEarlyBird(l, r.loc) })
	}},
	{models.BadgeNightOwl, func(r retention) bool {
		return anyLog(r.remaining, func(l *models.WorkoutLog) bool { return isNightOwl(l, r.loc) })
	}},
	{models.BadgeStreak5, func(r retention) bool { return ComputeStreak(r.remaining, r.now, r.opts).Count >= 5 }},
	{models.BadgeCenturyClub, func(r retention) bool { return anyLog(r.remaining, isCentury) }},
	{models.BadgeWeekendWarrior, func(r retention) bool {
		return anyLog(r.remaining, func(l *models.WorkoutLog) bool { return isWeekend(l, r.loc) })
	}},
	{models.BadgeTeamPlayer, func(r retention) bool {
		return r.team != nil && r.team.WeeklyCount >= r.team.WeeklyTarget
	}},
	{models.BadgeGoalCrusher, func(r retention) bool {
		return r.team != nil && r.team.MonthlyCount >= r.team.MonthlyTarget
	}},
}

func anyLog(logs []*models.WorkoutLog, pred func(*models.WorkoutLog) bool) bool {
	for _, l := range logs {
		if pred(l) {
			return true
		}
	}
	return false
}

// RevertLog undoes what a deleted log contributed. It must run after the log
// is gone from the store. Users without stored state are left alone.
func (e *Engine) RevertLog(ctx context.Context, l *models.WorkoutLog, profile models.UserProfile) error {
	if l == nil {
		return nil
	}
	state, existed, err := e.loadState(ctx, profile)
	if err != nil {
		return err
	}
	if !existed {
		e.logger.Debug("no state to revert", "user", profile.DisplayName, "log", l.ID)
		return nil
	}

	if l.IsCommitment() {
		if c := state.ActiveCommitment; c != nil && absDuration(c.Sub(l.Date)) <= commitmentTolerance {
			state.ActiveCommitment = nil
		}
	} else {
		state.AddPoints(-BasePoints(l))
		state.AddXP(-BaseXP(l))
	}

	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return err
	}
	remaining := make([]*models.WorkoutLog, 0, len(history))
	for _, h := range history {
		if h.ID != l.ID {
			remaining = append(remaining, h)
		}
	}

	e.stats.Invalidate(ctx, profile.TribeID)
	team, err := e.stats.Get(ctx, profile.TribeID)
	if err != nil {
		return err
	}

	r := retention{
		remaining: remaining,
		team:      team,
		now:       e.now(),
		loc:       e.loc,
		opts:      e.streakOptions(),
	}
	kept := make(map[string]bool, len(keepRules))
	for _, rule := range keepRules {
		if rule.check(r) {
			kept[rule.id] = true
		}
	}
	for _, id := range slices.Clone(state.Badges) {
		if kept[id] {
			continue
		}
		state.RemoveBadge(id)
		state.AddPoints(-BadgeRewardPoints)
		state.AddXP(-BadgeRewardXP)
		metrics.BadgesRevoked.WithLabelValues(id).Inc()
	}

	if err := e.saveState(ctx, profile, state); err != nil {
		return err
	}
	metrics.Reversals.Inc()
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
