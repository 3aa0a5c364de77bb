// ABOUTME: Badge predicates and the award flow run after a workout is logged.
// ABOUTME: Grants base XP/points, streak bonus, and a reward per newly unlocked badge.
package gamification

import (
	"context"
	"time"

	"github.com/harperreed/tribe/internal/metrics"
	"github.com/harperreed/tribe/internal/models"
)

const (
	weekWarriorLogs    = 3
	earlyBirdHour      = 8
	nightOwlHour       = 20
	lunchStartHour     = 11
	lunchEndHour       = 13
	centuryVolume      = 1000
	heavyLifterVolume  = 5000
	calorieCrusherKcal = 500
	longHaulMinutes    = 90
)

// evaluation is everything a badge predicate may look at.
type evaluation struct {
	log     *models.WorkoutLog
	history []*models.WorkoutLog // non-commitment, newest first, includes log
	streak  int
	team    *models.TeamStats
	now     time.Time
	loc     *time.Location
}

type badgeRule struct {
	id    string
	check func(ev evaluation) bool
}

// badgeRules are evaluated in catalog order. social_butterfly and
// consistency_king are awarded elsewhere.
var badgeRules = []badgeRule{
	{models.BadgeFirstStep, func(ev evaluation) bool { return len(ev.history) == 1 }},
	{models.BadgeWeekWarrior, func(ev evaluation) bool {
		return countSince(ev.history, ev.now.Add(-7*24*time.Hour), ev.now) >= weekWarriorLogs
	}},
	{models.BadgeEarlyBird, func(ev evaluation) bool { return isEarlyBird(ev.log, ev.loc) }},
	{models.BadgeNightOwl, func(ev evaluation) bool { return isNightOwl(ev.log, ev.loc) }},
	{models.BadgeLunchBreak, func(ev evaluation) bool {
		h := ev.log.Date.In(ev.loc).Hour()
		return h >= lunchStartHour && h < lunchEndHour
	}},
	{models.BadgeStreak5, func(ev evaluation) bool { return ev.streak >= 5 }},
	{models.BadgeStreak10, func(ev evaluation) bool { return ev.streak >= 10 }},
	{models.BadgeCenturyClub, func(ev evaluation) bool { return isCentury(ev.log) }},
	{models.BadgeHeavyLifter, func(ev evaluation) bool {
		return ev.log.Kind != models.KindCustom && ev.log.Volume() >= heavyLifterVolume
	}},
	{models.BadgeWeekendWarrior, func(ev evaluation) bool { return isWeekend(ev.log, ev.loc) }},
	{models.BadgeTeamPlayer, func(ev evaluation) bool {
		return ev.team != nil && ev.team.WeeklyCount >= ev.team.WeeklyTarget
	}},
	{models.BadgeGoalCrusher, func(ev evaluation) bool {
		return ev.team != nil && ev.team.MonthlyCount >= ev.team.MonthlyTarget
	}},
	{models.BadgeCalorieCrusher, func(ev evaluation) bool {
		return ev.log.Calories != nil && *ev.log.Calories >= calorieCrusherKcal
	}},
	{models.BadgeLongHaul, func(ev evaluation) bool { return ev.log.DurationMinutes >= longHaulMinutes }},
}

func isEarlyBird(l *models.WorkoutLog, loc *time.Location) bool {
	return l.Date.In(loc).Hour() < earlyBirdHour
}

func isNightOwl(l *models.WorkoutLog, loc *time.Location) bool {
	return l.Date.In(loc).Hour() >= nightOwlHour
}

func isCentury(l *models.WorkoutLog) bool {
	return l.Kind != models.KindCustom && l.Volume() >= centuryVolume
}

func isWeekend(l *models.WorkoutLog, loc *time.Location) bool {
	wd := l.Date.In(loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// countSince counts logs dated in (from, to].
func countSince(logs []*models.WorkoutLog, from, to time.Time) int {
	n := 0
	for _, l := range logs {
		if l.Date.After(from) && !l.Date.After(to) {
			n++
		}
	}
	return n
}

// CheckAchievements awards a freshly stored log: base XP and points, the streak
// bonus, and every newly qualifying badge. It returns the badges unlocked by
// this call. Commitment logs earn nothing.
func (e *Engine) CheckAchievements(ctx context.Context, l *models.WorkoutLog, profile models.UserProfile) ([]models.Badge, error) {
	if l == nil || l.IsCommitment() {
		return nil, nil
	}

	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	history, err := e.userHistory(ctx, profile)
	if err != nil {
		return nil, err
	}
	history = withLog(history, l)

	now := e.now()
	sourceID := l.ID.String()

	bd := Breakdown(history, BreakdownOptions{SortedDesc: true, GraceDays: e.grace, Location: e.loc})[l.ID]
	points := BasePoints(l)
	e.appendXP(ctx, profile, bd.Total, models.SourceWorkout, sourceID)
	e.appendPoints(ctx, profile, points, models.PointsEarned, models.SourceWorkout, sourceID)
	state.AddXP(bd.Total)
	state.AddPoints(points)
	metrics.WorkoutsAwarded.WithLabelValues(l.Kind.String()).Inc()
	metrics.XPAwarded.Add(float64(bd.Total))

	e.stats.Invalidate(ctx, profile.TribeID)
	team, err := e.stats.Get(ctx, profile.TribeID)
	if err != nil {
		return nil, err
	}

	ev := evaluation{
		log:     l,
		history: history,
		streak:  ComputeStreak(history, now, e.streakOptions()).Count,
		team:    team,
		now:     now,
		loc:     e.loc,
	}

	var unlocked []models.Badge
	for _, rule := range badgeRules {
		if state.HasBadge(rule.id) || !rule.check(ev) {
			continue
		}
		badge, ok := models.BadgeByID(rule.id)
		if !ok {
			continue
		}
		state.AddBadge(rule.id)
		state.AddItem(e.randomGift().ID)
		state.AddPoints(BadgeRewardPoints)
		state.AddXP(BadgeRewardXP)
		e.appendXP(ctx, profile, BadgeRewardXP, models.SourceBadge, rule.id)
		e.appendPoints(ctx, profile, BadgeRewardPoints, models.PointsEarned, models.SourceBadge, rule.id)
		metrics.BadgesUnlocked.WithLabelValues(rule.id).Inc()
		metrics.XPAwarded.Add(BadgeRewardXP)
		unlocked = append(unlocked, badge)
	}

	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	e.logger.Debug("workout awarded", "user", profile.DisplayName, "log", sourceID, "xp", bd.Total, "points", points, "badges", len(unlocked))
	return unlocked, nil
}

// withLog adds l to a newest-first history unless it is already present.
func withLog(history []*models.WorkoutLog, l *models.WorkoutLog) []*models.WorkoutLog {
	for _, h := range history {
		if h.ID == l.ID {
			return history
		}
	}
	out := append(history, l)
	sortNewestFirst(out)
	return out
}
