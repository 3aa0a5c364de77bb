// ABOUTME: Tests for the award, reversal, shop, gift, and commitment flows.
// ABOUTME: Runs the engine against the in-memory store with a fixed clock and seed.
package gamification

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.UserProfile{ID: "u-alice", DisplayName: "alice", TribeID: "crew"}

func newTestEngine(store *memStore, opts ...Option) *Engine {
	clock := func() time.Time { return testNow }
	quiet := log.New(io.Discard)
	base := []Option{
		WithClock(clock),
		WithLocation(time.UTC),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithLogger(quiet),
	}
	return NewEngine(store, append(base, opts...)...)
}

func badgeIDs(badges []models.Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

// plainLog is a 45-minute Plan A on a weekday morning: it triggers no
// time-of-day, weekend, volume, calorie, or duration badge.
func plainLog(user string, t time.Time) *models.WorkoutLog {
	return models.NewWorkoutLog(user, models.KindPlanA).WithDuration(45).WithDate(t).WithTribe("crew")
}

func TestCheckAchievementsFirstWorkout(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	l := plainLog("alice", testNow)
	badges, err := engine.Record(ctx, l, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{models.BadgeFirstStep}, badgeIDs(badges))

	s := store.state("alice")
	require.NotNil(t, s)
	assert.Equal(t, 60, s.Points)
	assert.Equal(t, 150, s.XP())
	assert.Equal(t, []string{models.BadgeFirstStep}, s.Badges)
	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 1, store.saves, "state is persisted once")

	require.Len(t, store.xp, 2)
	assert.Equal(t, 100, store.xp[0].Amount)
	assert.Equal(t, models.SourceWorkout, store.xp[0].Source)
	assert.Equal(t, l.ID.String(), store.xp[0].SourceID)
	assert.Equal(t, 50, store.xp[1].Amount)
	assert.Equal(t, models.SourceBadge, store.xp[1].Source)
	require.Len(t, store.points, 2)
	assert.Equal(t, 10, store.points[0].Amount)
	assert.Equal(t, models.PointsEarned, store.points[1].Type)
}

func TestCheckAchievementsIsIdempotentForHeldBadges(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	l := plainLog("alice", testNow)
	_, err := engine.Record(ctx, l, alice)
	require.NoError(t, err)

	again, err := engine.CheckAchievements(ctx, l, alice)
	require.NoError(t, err)
	assert.Empty(t, again)

	s := store.state("alice")
	assert.Equal(t, []string{models.BadgeFirstStep}, s.Badges)
	assert.Equal(t, 1, s.ItemCount(), "no duplicate gift")
	assert.Equal(t, 70, s.Points, "only the workout points are added again")
}

func TestCheckAchievementsSkipsCommitments(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	l := models.NewWorkoutLog("alice", models.KindCommitment).WithDate(testNow)
	badges, err := engine.CheckAchievements(context.Background(), l, alice)
	require.NoError(t, err)
	assert.Empty(t, badges)
	assert.Zero(t, store.saves)
	assert.Empty(t, store.xp)
	assert.Empty(t, store.points)
}

func TestCheckAchievementsStreakBonusAndWeekWarrior(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.logs = []*models.WorkoutLog{
		plainLog("alice", testNow.AddDate(0, 0, -2)),
		plainLog("alice", testNow.AddDate(0, 0, -1)),
	}
	engine := newTestEngine(store)

	badges, err := engine.Record(ctx, plainLog("alice", testNow), alice)
	require.NoError(t, err)
	assert.Equal(t, []string{models.BadgeWeekWarrior}, badgeIDs(badges))

	s := store.state("alice")
	assert.Equal(t, 100+20+50, s.XP(), "base, day-3 streak bonus, badge")
	assert.Equal(t, 10+50, s.Points, "streak bonus never adds points")
}

func TestCheckAchievementsPerLogBadges(t *testing.T) {
	tests := []struct {
		name  string
		log   *models.WorkoutLog
		badge string
	}{
		{"early bird", plainLog("alice", time.Date(2024, 3, 15, 7, 59, 0, 0, time.UTC)), models.BadgeEarlyBird},
		{"night owl", plainLog("alice", time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)), models.BadgeNightOwl},
		{"lunch break", plainLog("alice", time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC)), models.BadgeLunchBreak},
		{"weekend", plainLog("alice", time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)), models.BadgeWeekendWarrior},
		{"calories", plainLog("alice", testNow).WithCalories(500), models.BadgeCalorieCrusher},
		{"long haul", plainLog("alice", testNow).WithDuration(90), models.BadgeLongHaul},
		{"century", plainLog("alice", testNow).WithExercise(models.Exercise{
			Name: "Squat", Sets: []models.Set{{Weight: 100, Reps: 10, Completed: true}},
		}), models.BadgeCenturyClub},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			badges, err := newTestEngine(store).Record(context.Background(), tt.log, alice)
			require.NoError(t, err)
			assert.Contains(t, badgeIDs(badges), tt.badge)
		})
	}
}

func TestCheckAchievementsVolumeIgnoresCustom(t *testing.T) {
	store := newMemStore()
	l := models.NewWorkoutLog("alice", models.KindCustom).WithDuration(45).WithDate(testNow).
		WithExercise(models.Exercise{Name: "Deadlift", Sets: []models.Set{{Weight: 200, Reps: 30, Completed: true}}})
	badges, err := newTestEngine(store).Record(context.Background(), l, alice)
	require.NoError(t, err)
	assert.NotContains(t, badgeIDs(badges), models.BadgeCenturyClub)
	assert.NotContains(t, badgeIDs(badges), models.BadgeHeavyLifter)
}

func TestTeamPlayerUnlocksAtTarget(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	stats := newTestStatsService(store, WithTargets(models.TeamTargets{Weekly: 2, Monthly: 20, Yearly: 240}, nil))
	engine := newTestEngine(store, WithTeamStats(stats))
	bob := models.UserProfile{ID: "u-bob", DisplayName: "bob", TribeID: "crew"}

	// Monday of the current week: weekly count 1 of 2.
	first, err := engine.Record(ctx, plainLog("bob", time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)), bob)
	require.NoError(t, err)
	assert.NotContains(t, badgeIDs(first), models.BadgeTeamPlayer)

	// Weekly count reaches the target exactly.
	second, err := engine.Record(ctx, plainLog("alice", testNow), alice)
	require.NoError(t, err)
	assert.Contains(t, badgeIDs(second), models.BadgeTeamPlayer)
}

func TestCheckAchievementsSwallowsLedgerFailures(t *testing.T) {
	store := newMemStore()
	store.failLedger = true

	badges, err := newTestEngine(store).Record(context.Background(), plainLog("alice", testNow), alice)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
	assert.Equal(t, 60, store.state("alice").Points)
}

func TestRevertRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	l := plainLog("alice", testNow)
	_, err := engine.Record(ctx, l, alice)
	require.NoError(t, err)
	gifts := store.state("alice").ItemCount()

	require.NoError(t, engine.Remove(ctx, l, alice))

	s := store.state("alice")
	assert.Zero(t, s.Points)
	assert.Zero(t, s.XP())
	assert.Empty(t, s.Badges, "first_step revoked with the only log")
	assert.Equal(t, gifts, s.ItemCount(), "gifts are never taken back")
	assert.Empty(t, store.logs)
}

func TestRevertKeepsBadgesSupportedByRemainingLogs(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	early := plainLog("alice", time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC))
	_, err := engine.Record(ctx, early, alice)
	require.NoError(t, err)
	second := plainLog("alice", time.Date(2024, 3, 14, 6, 30, 0, 0, time.UTC))
	_, err = engine.Record(ctx, second, alice)
	require.NoError(t, err)
	before := store.state("alice")
	require.True(t, before.HasBadge(models.BadgeEarlyBird))

	require.NoError(t, engine.Remove(ctx, second, alice))

	s := store.state("alice")
	assert.True(t, s.HasBadge(models.BadgeFirstStep))
	assert.True(t, s.HasBadge(models.BadgeEarlyBird), "the remaining log is still early")
	assert.Equal(t, before.Points-BasePoints(second), s.Points)
}

func TestRevertRevokesEveryUnsupportedBadge(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	// Sunday lunch, 95 minutes.
	l := plainLog("alice", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)).WithDuration(95)
	badges, err := engine.Record(ctx, l, alice)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		models.BadgeFirstStep, models.BadgeLunchBreak, models.BadgeWeekendWarrior, models.BadgeLongHaul,
	}, badgeIDs(badges))
	gifts := store.state("alice").ItemCount()

	require.NoError(t, engine.Remove(ctx, l, alice))
	s := store.state("alice")
	assert.Empty(t, s.Badges)
	assert.Zero(t, s.Points)
	assert.Zero(t, s.XP())
	assert.Equal(t, gifts, s.ItemCount())
}

func TestRevertRechecksAgainstCurrentWindow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 0; i < 5; i++ {
		store.logs = append(store.logs, plainLog("alice", testNow.AddDate(0, 0, -30-i)))
	}
	recent := plainLog("alice", testNow)
	store.logs = append(store.logs, recent)
	xp := 500
	store.states["alice"] = &models.UserGamificationState{
		Points:     500,
		LifetimeXP: &xp,
		Badges:     []string{models.BadgeFirstStep, models.BadgeWeekWarrior, models.BadgeStreak5},
	}

	require.NoError(t, newTestEngine(store).Remove(ctx, recent, alice))

	s := store.state("alice")
	assert.Equal(t, []string{models.BadgeFirstStep}, s.Badges, "old bursts no longer support week_warrior or streak_5")
	assert.Equal(t, 500-10-2*BadgeRewardPoints, s.Points)
	assert.Equal(t, 500-100-2*BadgeRewardXP, s.XP())
}

func TestRevertRechecksTeamGoals(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	old := plainLog("alice", testNow.AddDate(0, -1, 0))
	store.logs = []*models.WorkoutLog{old, plainLog("alice", testNow)}
	store.states["alice"] = &models.UserGamificationState{
		Points: 300,
		Badges: []string{models.BadgeFirstStep, models.BadgeTeamPlayer, models.BadgeGoalCrusher},
	}

	require.NoError(t, newTestEngine(store).Remove(ctx, old, alice))

	s := store.state("alice")
	assert.Equal(t, []string{models.BadgeFirstStep}, s.Badges, "goals are below target regardless of when the log was")
	assert.Equal(t, 300-10-2*BadgeRewardPoints, s.Points)
}

func TestRevertWithoutStateIsNoop(t *testing.T) {
	store := newMemStore()
	err := newTestEngine(store).RevertLog(context.Background(), plainLog("alice", testNow), alice)
	require.NoError(t, err)
	assert.Zero(t, store.saves)
	assert.Nil(t, store.state("alice"))
}

func TestRevertClampsAtZero(t *testing.T) {
	store := newMemStore()
	xp := 20
	store.states["alice"] = &models.UserGamificationState{Points: 5, LifetimeXP: &xp, Badges: []string{}}

	require.NoError(t, newTestEngine(store).RevertLog(context.Background(), plainLog("alice", testNow), alice))
	s := store.state("alice")
	assert.Zero(t, s.Points)
	assert.Zero(t, s.XP())
}

func TestCommitmentLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)
	pledge := testNow.Add(24 * time.Hour)

	c, err := engine.Commit(ctx, alice, pledge)
	require.NoError(t, err)
	assert.Equal(t, models.KindCommitment, c.Kind)
	require.NotNil(t, store.state("alice").ActiveCommitment)

	// Logging a workout leaves the pledge in place.
	_, err = engine.Record(ctx, plainLog("alice", testNow), alice)
	require.NoError(t, err)
	require.NotNil(t, store.state("alice").ActiveCommitment)
	assert.Zero(t, store.state("alice").ActiveCommitment.Sub(pledge))

	// Deleting the commitment clears it and changes nothing else.
	before := store.state("alice")
	require.NoError(t, engine.Remove(ctx, c, alice))
	after := store.state("alice")
	assert.Nil(t, after.ActiveCommitment)
	assert.Equal(t, before.Points, after.Points)
	assert.Equal(t, before.Badges, after.Badges)
}

func TestLaterWorkoutKeepsPledge(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	_, err := engine.Commit(ctx, alice, testNow.Add(-time.Hour))
	require.NoError(t, err)
	_, err = engine.Record(ctx, plainLog("alice", testNow), alice)
	require.NoError(t, err)
	assert.NotNil(t, store.state("alice").ActiveCommitment, "only deleting the commitment log clears it")
}

func TestRevertCommitmentStillRechecksBadges(t *testing.T) {
	store := newMemStore()
	pledge := testNow.Add(24 * time.Hour)
	xp := 200
	store.states["alice"] = &models.UserGamificationState{
		Points:           120,
		LifetimeXP:       &xp,
		Badges:           []string{models.BadgeFirstStep, models.BadgeLongHaul},
		ActiveCommitment: &pledge,
	}

	l := models.NewWorkoutLog("alice", models.KindCommitment).WithDate(pledge).WithTribe("crew")
	require.NoError(t, newTestEngine(store).RevertLog(context.Background(), l, alice))

	s := store.state("alice")
	assert.Nil(t, s.ActiveCommitment)
	assert.Empty(t, s.Badges)
	assert.Equal(t, 20, s.Points)
	assert.Equal(t, 100, s.XP())
}

func TestRevertLegacyCommitmentBadge(t *testing.T) {
	store := newMemStore()
	store.logs = []*models.WorkoutLog{plainLog("alice", testNow)}
	pledge := time.UnixMilli(1710495000000)
	store.states["alice"] = &models.UserGamificationState{
		Points: 40,
		Badges: []string{models.BadgeFirstStep, "committed_1710495000000"},
	}

	l := models.NewWorkoutLog("alice", models.KindCommitment).WithDate(pledge.Add(500 * time.Millisecond))
	require.NoError(t, newTestEngine(store).RevertLog(context.Background(), l, alice))

	s := store.state("alice")
	assert.Nil(t, s.ActiveCommitment)
	assert.Equal(t, []string{models.BadgeFirstStep}, s.Badges)
	assert.Equal(t, 40, s.Points)
	assert.Equal(t, 40, s.XP(), "lifetime XP seeded from points")
}

func TestRevertOtherCommitmentKeepsPledge(t *testing.T) {
	store := newMemStore()
	pledge := testNow.Add(48 * time.Hour)
	store.states["alice"] = &models.UserGamificationState{ActiveCommitment: &pledge}

	l := models.NewWorkoutLog("alice", models.KindCommitment).WithDate(pledge.Add(2 * time.Second))
	require.NoError(t, newTestEngine(store).RevertLog(context.Background(), l, alice))
	require.NotNil(t, store.state("alice").ActiveCommitment)
	assert.Zero(t, store.state("alice").ActiveCommitment.Sub(pledge))
}

func TestPurchaseTheme(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)
	store.states["alice"] = &models.UserGamificationState{Points: 250}

	_, err := engine.PurchaseTheme(ctx, alice, "jungle_night")
	require.ErrorIs(t, err, ErrNotEnoughPoints)

	_, err = engine.PurchaseTheme(ctx, alice, "disco")
	require.ErrorIs(t, err, ErrUnknownTheme)

	s, err := engine.PurchaseTheme(ctx, alice, "deep_forest")
	require.NoError(t, err)
	assert.Equal(t, 50, s.Points)
	assert.Equal(t, "deep_forest", s.ActiveTheme)
	assert.True(t, s.HasTheme("deep_forest"))
	require.Len(t, store.points, 1)
	assert.Equal(t, -200, store.points[0].Amount)
	assert.Equal(t, models.PointsSpent, store.points[0].Type)
	assert.Equal(t, models.SourceShop, store.points[0].Source)

	// Buying an owned theme only equips it.
	_, err = engine.EquipTheme(ctx, alice, models.DefaultTheme)
	require.NoError(t, err)
	s, err = engine.PurchaseTheme(ctx, alice, "deep_forest")
	require.NoError(t, err)
	assert.Equal(t, 50, s.Points)
	assert.Equal(t, "deep_forest", s.ActiveTheme)
}

func TestEquipTheme(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	_, err := engine.EquipTheme(ctx, alice, "volcano")
	require.ErrorIs(t, err, ErrThemeLocked)

	s, err := engine.EquipTheme(ctx, alice, models.DefaultTheme)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTheme, s.ActiveTheme)
}

func TestSendGift(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)
	store.states["alice"] = &models.UserGamificationState{Inventory: map[string]int{"fist_bump": 1}}

	_, err := engine.SendGift(ctx, alice, "alice", "fist_bump")
	require.ErrorIs(t, err, ErrSelfGift)
	_, err = engine.SendGift(ctx, alice, "bob", "sword")
	require.ErrorIs(t, err, ErrUnknownGift)

	tx, err := engine.SendGift(ctx, alice, "bob", "fist_bump")
	require.NoError(t, err)
	assert.Equal(t, "bob", tx.To)
	assert.NotContains(t, store.state("alice").Inventory, "fist_bump")
	require.Len(t, store.gifts, 1)

	_, err = engine.SendGift(ctx, alice, "bob", "fist_bump")
	require.ErrorIs(t, err, ErrGiftNotHeld)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.logs = []*models.WorkoutLog{
		plainLog("alice", testNow),
		plainLog("alice", testNow.AddDate(0, 0, -1)),
		plainLog("alice", testNow.AddDate(0, 0, -2)),
	}
	xp := 750
	store.states["alice"] = &models.UserGamificationState{Points: 90, LifetimeXP: &xp}
	engine := newTestEngine(store)

	p, err := engine.Progress(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Streak)
	assert.Equal(t, MoodFire, p.Mood)
	assert.False(t, p.AtRisk)
	assert.Equal(t, 2, p.Level.Level)
	assert.Equal(t, "Novice", p.Rank)
	assert.Equal(t, 3, p.Workouts)

	store.logs = []*models.WorkoutLog{plainLog("alice", testNow.AddDate(0, 0, -2))}
	risk, err := engine.StreakAtRisk(ctx, alice)
	require.NoError(t, err)
	assert.True(t, risk)
	mood, err := engine.Mood(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, MoodNormal, mood)
}

func TestEngineBreakdownAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	_, err := engine.Record(ctx, plainLog("alice", testNow.AddDate(0, 0, -1)), alice)
	require.NoError(t, err)
	_, err = engine.Record(ctx, plainLog("alice", testNow), alice)
	require.NoError(t, err)

	rows, err := engine.Breakdown(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 110, rows[0].Total)
	assert.Equal(t, 100, rows[1].Total)

	bob := models.UserProfile{ID: "u-bob", DisplayName: "bob", TribeID: "crew"}
	_, err = engine.Record(ctx, plainLog("bob", testNow), bob)
	require.NoError(t, err)

	board, err := engine.Leaderboard(ctx, "crew")
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "alice", board[0].User)
	assert.Equal(t, "bob", board[1].User)
}

func TestConcurrentAwardsForDifferentUsers(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := newTestEngine(store)

	const users = 8
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			profile := models.UserProfile{ID: name, DisplayName: name, TribeID: "crew"}
			_, err := engine.Record(ctx, plainLog(name, testNow), profile)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for i := 0; i < users; i++ {
		s := store.state(fmt.Sprintf("user%d", i))
		require.NotNil(t, s)
		assert.True(t, s.HasBadge(models.BadgeFirstStep))
		require.Len(t, s.Inventory, 1)
		for id := range s.Inventory {
			_, ok := models.GiftByID(id)
			assert.True(t, ok, "gift %q comes from the catalog", id)
		}
	}
}
