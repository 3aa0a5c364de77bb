// ABOUTME: Tribe aggregate stats: weekly/monthly/yearly counts and team streak.
// ABOUTME: Results are cached per tribe; a missing data source yields placeholder stats.
package gamification

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/cache"
	"github.com/harperreed/tribe/internal/metrics"
	"github.com/harperreed/tribe/internal/models"
)

// TeamStatsTTL is how long computed team stats stay cached.
const TeamStatsTTL = 5 * time.Minute

const (
	teamStatsTag    = "teamstats"
	teamStatsPrefix = "teamstats:"
	allTribesKey    = "_all"
)

// FallbackTeamStats is served when no data source is available.
func FallbackTeamStats() *models.TeamStats {
	return &models.TeamStats{
		WeeklyCount:   3,
		WeeklyTarget:  models.DefaultTeamTargets.Weekly,
		MonthlyCount:  10,
		MonthlyTarget: models.DefaultTeamTargets.Monthly,
		YearlyCount:   50,
		YearlyTarget:  models.DefaultTeamTargets.Yearly,
		UserStats:     map[string]int{},
		TeamStreak:    5,
		Degraded:      true,
	}
}

// TeamStatsService computes and caches tribe stats.
type TeamStatsService struct {
	logs     LogSource
	cache    *cache.Cache
	targets  map[string]models.TeamTargets
	defaults models.TeamTargets
	now      func() time.Time
	loc      *time.Location
	logger   *log.Logger
}

// TeamStatsOption configures a TeamStatsService.
type TeamStatsOption func(*TeamStatsService)

// WithStatsCache sets the cache; by default a private memory cache is used.
func WithStatsCache(c *cache.Cache) TeamStatsOption {
	return func(s *TeamStatsService) { s.cache = c }
}

// WithTargets sets the default goals and per-tribe overrides.
func WithTargets(defaults models.TeamTargets, perTribe map[string]models.TeamTargets) TeamStatsOption {
	return func(s *TeamStatsService) {
		s.defaults = defaults
		s.targets = perTribe
	}
}

// WithStatsClock overrides time.Now.
func WithStatsClock(now func() time.Time) TeamStatsOption {
	return func(s *TeamStatsService) { s.now = now }
}

// WithStatsLocation sets the timezone that defines calendar days and weeks.
func WithStatsLocation(loc *time.Location) TeamStatsOption {
	return func(s *TeamStatsService) { s.loc = loc }
}

// WithStatsLogger sets the logger.
func WithStatsLogger(l *log.Logger) TeamStatsOption {
	return func(s *TeamStatsService) { s.logger = l }
}

// NewTeamStatsService creates a service over logs. A nil source runs in
// degraded mode and always returns FallbackTeamStats.
func NewTeamStatsService(logs LogSource, opts ...TeamStatsOption) *TeamStatsService {
	s := &TeamStatsService{
		logs:     logs,
		defaults: models.DefaultTeamTargets,
		now:      time.Now,
		loc:      time.Local,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithTTL(TeamStatsTTL), cache.WithClock(s.now))
	}
	return s
}

// Targets returns the goals for a tribe.
func (s *TeamStatsService) Targets(tribeID string) models.TeamTargets {
	if t, ok := s.targets[tribeID]; ok {
		return t
	}
	return s.defaults
}

// Get returns the stats for a tribe (empty for all logs), from cache when fresh.
func (s *TeamStatsService) Get(ctx context.Context, tribeID string) (*models.TeamStats, error) {
	if s.logs == nil {
		metrics.TeamStatsDegraded.Inc()
		return FallbackTeamStats(), nil
	}

	key := teamStatsKey(tribeID)
	if cached, ok := cache.GetJSON[models.TeamStats](ctx, s.cache, key); ok {
		return &cached, nil
	}

	logs, err := s.logs.AllLogs(ctx, tribeID)
	if err != nil {
		s.logger.Warn("team stats source unavailable, serving placeholder", "tribe", tribeID, "err", err)
		metrics.TeamStatsDegraded.Inc()
		return FallbackTeamStats(), nil
	}

	stats := ComputeTeamStats(logs, s.now(), s.loc, s.Targets(tribeID))
	if err := cache.SetJSON(ctx, s.cache, key, stats, teamStatsTag, tribeTag(tribeID)); err != nil {
		s.logger.Warn("cache team stats", "tribe", tribeID, "err", err)
	}
	return stats, nil
}

// Invalidate drops cached stats for a tribe and for the all-tribes view.
func (s *TeamStatsService) Invalidate(ctx context.Context, tribeID string) {
	s.cache.InvalidateTag(ctx, tribeTag(tribeID))
	if tribeID != "" {
		s.cache.InvalidateTag(ctx, tribeTag(""))
	}
}

func teamStatsKey(tribeID string) string {
	if tribeID == "" {
		return teamStatsPrefix + allTribesKey
	}
	return teamStatsPrefix + tribeID
}

func tribeTag(tribeID string) string {
	if tribeID == "" {
		return "tribe:" + allTribesKey
	}
	return "tribe:" + tribeID
}

// ComputeTeamStats aggregates logs as of now. Commitments never count.
// Weekly counts (team and per user) only include sessions of 30+ minutes;
// monthly and yearly counts include every non-commitment log.
func ComputeTeamStats(logs []*models.WorkoutLog, now time.Time, loc *time.Location, targets models.TeamTargets) *models.TeamStats {
	loc = locationOrLocal(loc)
	today := dayOf(now, loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)

	stats := &models.TeamStats{
		WeeklyTarget:  targets.Weekly,
		MonthlyTarget: targets.Monthly,
		YearlyTarget:  targets.Yearly,
		UserStats:     map[string]int{},
	}

	days := map[time.Time]struct{}{}
	for _, l := range logs {
		if l == nil || l.IsCommitment() {
			continue
		}
		at := l.Date.In(loc)
		days[dayOf(at, loc)] = struct{}{}

		if !at.Before(weekStart) && l.DurationMinutes >= models.MinStreakMinutes {
			stats.WeeklyCount++
			stats.UserStats[l.User]++
		}
		if !at.Before(monthStart) {
			stats.MonthlyCount++
		}
		if !at.Before(yearStart) {
			stats.YearlyCount++
		}
	}

	stats.TeamStreak = teamStreak(days, today)
	return stats
}

// teamStreak counts consecutive active days ending today or yesterday.
// Unlike personal streaks there is no grace: every day must be active.
func teamStreak(days map[time.Time]struct{}, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	if daysBetween(sorted[0], today) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(sorted); i++ {
		if daysBetween(sorted[i], sorted[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}
