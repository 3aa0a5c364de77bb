// ABOUTME: XP, points, streak bonus, and level rules for workout logs.
// ABOUTME: Per-log rules switch over the closed WorkoutKind enum.
package gamification

import (
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/tribe/internal/models"
)

const (
	// XPPerWorkout is the flat XP for Plan A.
	XPPerWorkout = 100
	// XPPerHardWorkout is the flat XP for Plan B. Both plans are worth the same.
	XPPerHardWorkout = 100
	// PointsPerWorkout is the flat point award for Plan A and Plan B.
	PointsPerWorkout = 10
	// CustomXPCap caps XP for Custom sessions of 30 minutes or more.
	CustomXPCap = 60

	// StreakBonusPerDay is added for each streak day beyond the first.
	StreakBonusPerDay = 10
	// StreakBonusCap is reached on streak day 6.
	StreakBonusCap = 50

	// BadgeRewardPoints and BadgeRewardXP are granted per unlocked badge.
	BadgeRewardPoints = 50
	BadgeRewardXP     = 50

	// XPPerLevel is the flat XP span of every level.
	XPPerLevel = 500
)

// BaseXP returns the XP a single log is worth before streak bonus.
func BaseXP(l *models.WorkoutLog) int {
	switch l.Kind {
	case models.KindPlanA:
		return XPPerWorkout
	case models.KindPlanB:
		return XPPerHardWorkout
	case models.KindCustom:
		if l.Vibes != nil {
			return max(min(*l.Vibes, CustomXPCap), 0)
		}
		if l.DurationMinutes < models.MinStreakMinutes {
			return max(l.DurationMinutes, 0)
		}
		return min(l.DurationMinutes, CustomXPCap)
	default:
		return 0
	}
}

// BasePoints returns the spendable points a single log is worth.
// Custom points are duration based: one point per 10 minutes, 60 minutes max.
func BasePoints(l *models.WorkoutLog) int {
	switch l.Kind {
	case models.KindPlanA, models.KindPlanB:
		return PointsPerWorkout
	case models.KindCustom:
		if l.DurationMinutes < models.MinStreakMinutes {
			return 0
		}
		return min(l.DurationMinutes, CustomXPCap) / 10
	default:
		return 0
	}
}

// LegacyCaloriePoints is the calorie-based Custom formula older clients used
// in some views (calories / 10). Kept for reading legacy point history only;
// awards and reversals always use BasePoints.
func LegacyCaloriePoints(l *models.WorkoutLog) int {
	if l.Kind != models.KindCustom || l.Calories == nil {
		return 0
	}
	return max(*l.Calories, 0) / 10
}

// StreakBonus returns the bonus XP for a streak of n days.
func StreakBonus(n int) int {
	if n <= 1 {
		return 0
	}
	return min((n-1)*StreakBonusPerDay, StreakBonusCap)
}

// XPBreakdown is the XP a log earned within its history.
type XPBreakdown struct {
	Base   int `json:"base"`
	Bonus  int `json:"bonus"`
	Total  int `json:"total"`
	Streak int `json:"streak"`
}

// BreakdownOptions controls Breakdown.
type BreakdownOptions struct {
	// SortedDesc declares the input already sorted newest first.
	SortedDesc bool
	GraceDays  int
	Location   *time.Location
}

// Breakdown walks logs oldest first with a running streak and records the
// base, bonus, and total XP of every log. Ineligible logs appear with bonus 0
// and leave the running streak untouched.
func Breakdown(logs []*models.WorkoutLog, opts BreakdownOptions) map[uuid.UUID]XPBreakdown {
	loc := locationOrLocal(opts.Location)
	grace := StreakOptions{GraceDays: opts.GraceDays}.grace()

	ordered := make([]*models.WorkoutLog, 0, len(logs))
	if opts.SortedDesc {
		for i := len(logs) - 1; i >= 0; i-- {
			if logs[i] != nil {
				ordered = append(ordered, logs[i])
			}
		}
	} else {
		for _, l := range logs {
			if l != nil {
				ordered = append(ordered, l)
			}
		}
		sortOldestFirst(ordered)
	}

	out := make(map[uuid.UUID]XPBreakdown, len(ordered))
	streak := 0
	var last time.Time
	for _, l := range ordered {
		base := BaseXP(l)
		if !l.IsStreakEligible() {
			out[l.ID] = XPBreakdown{Base: base, Total: base, Streak: streak}
			continue
		}

		d := dayOf(l.Date, loc)
		if last.IsZero() {
			streak = 1
		} else {
			gap := daysBetween(last, d)
			switch {
			case gap == 0:
			case gap <= grace:
				streak++
			default:
				streak = 1
			}
		}
		last = d

		bonus := StreakBonus(streak)
		out[l.ID] = XPBreakdown{Base: base, Bonus: bonus, Total: base + bonus, Streak: streak}
	}
	return out
}

// CalculateXP sums the breakdown totals of a history.
func CalculateXP(logs []*models.WorkoutLog) int {
	total := 0
	for _, b := range Breakdown(logs, BreakdownOptions{}) {
		total += b.Total
	}
	return total
}

// CalculateLevel returns the level for a lifetime XP amount. Level 1 starts at 0.
func CalculateLevel(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// LevelProgress describes progress through the current level.
type LevelProgress struct {
	Level     int `json:"level"`
	NextLevel int `json:"next_level"`
	CurrentXP int `json:"current_xp"`
	NeededXP  int `json:"needed_xp"`
	Progress  int `json:"progress"`
}

// GetLevelProgress returns level progress for a lifetime XP amount.
func GetLevelProgress(xp int) LevelProgress {
	xp = max(xp, 0)
	level := CalculateLevel(xp)
	current := xp - (level-1)*XPPerLevel
	return LevelProgress{
		Level:     level,
		NextLevel: level + 1,
		CurrentXP: current,
		NeededXP:  XPPerLevel,
		Progress:  current * 100 / XPPerLevel,
	}
}

// Rank returns the title shown next to a level.
func Rank(level int) string {
	switch {
	case level < 5:
		return "Novice"
	case level < 10:
		return "Scout"
	case level < 15:
		return "Ranger"
	case level < 20:
		return "Warrior"
	case level < 30:
		return "Guardian"
	default:
		return "Legend"
	}
}
