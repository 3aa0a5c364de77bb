// ABOUTME: Engine wires the reward rules to persistence: award, revert, shop, gifts.
// ABOUTME: Each call loads a working copy of state, computes, and persists it once.
package gamification

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/metrics"
	"github.com/harperreed/tribe/internal/models"
)

// Engine evaluates workouts against the reward rules.
type Engine struct {
	store  Store
	stats  *TeamStatsService
	now    func() time.Time
	loc    *time.Location
	grace  int
	logger *log.Logger

	rngMu sync.Mutex // rand.Rand is not safe for concurrent use
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone used for calendar days and hour-of-day badges.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithGraceDays overrides DefaultGraceDays.
func WithGraceDays(days int) Option {
	return func(e *Engine) { e.grace = days }
}

// WithRand sets the random source used to pick badge gifts.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTeamStats shares a stats service (and its cache) with the engine.
func WithTeamStats(s *TeamStatsService) Option {
	return func(e *Engine) { e.stats = s }
}

// NewEngine creates an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		now:    time.Now,
		loc:    time.Local,
		grace:  DefaultGraceDays,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(e.now().UnixNano()), 0x7472696265))
	}
	if e.stats == nil {
		e.stats = NewTeamStatsService(store,
			WithStatsClock(e.now),
			WithStatsLocation(e.loc),
			WithStatsLogger(e.logger),
		)
	}
	return e
}

// TeamStats returns the engine's stats service.
func (e *Engine) TeamStats() *TeamStatsService {
	return e.stats
}

// Location returns the timezone the engine uses for calendar days.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) streakOptions() StreakOptions {
	return StreakOptions{Sorted: true, GraceDays: e.grace, Location: e.loc}
}

// State returns a user's normalized state, or the default state when none exists.
func (e *Engine) State(ctx context.Context, profile models.UserProfile) (*models.UserGamificationState, error) {
	state, _, err := e.loadState(ctx, profile)
	return state, err
}

// loadState returns a mutable working copy and whether state was persisted before.
func (e *Engine) loadState(ctx context.Context, profile models.UserProfile) (*models.UserGamificationState, bool, error) {
	states, err := e.store.GamificationStates(ctx, profile.TribeID)
	if err != nil {
		return nil, false, fmt.Errorf("load gamification state: %w", err)
	}
	stored, ok := states[profile.DisplayName]
	if !ok || stored == nil {
		return models.NewGamificationState(), false, nil
	}
	state := stored.Clone()
	state.Normalize()
	return state, true, nil
}

func (e *Engine) saveState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error {
	if err := e.store.SaveGamificationState(ctx, profile, state); err != nil {
		return fmt.Errorf("save gamification state: %w", err)
	}
	return nil
}

// userHistory returns the user's non-commitment logs, newest first.
func (e *Engine) userHistory(ctx context.Context, profile models.UserProfile) ([]*models.WorkoutLog, error) {
	logs, err := e.store.UserLogs(ctx, profile.DisplayName, profile.TribeID)
	if err != nil {
		return nil, fmt.Errorf("load user logs: %w", err)
	}
	out := make([]*models.WorkoutLog, 0, len(logs))
	for _, l := range logs {
		if l != nil && !l.IsCommitment() {
			out = append(out, l)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Record stores a new log and evaluates it.
func (e *Engine) Record(ctx context.Context, l *models.WorkoutLog, profile models.UserProfile) ([]models.Badge, error) {
	if err := e.store.CreateLog(ctx, l); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	return e.CheckAchievements(ctx, l, profile)
}

// Remove deletes a stored log and reverts what it contributed.
func (e *Engine) Remove(ctx context.Context, l *models.WorkoutLog, profile models.UserProfile) error {
	if err := e.store.DeleteLog(ctx, l.ID.String()); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return e.RevertLog(ctx, l, profile)
}

func (e *Engine) appendXP(ctx context.Context, profile models.UserProfile, amount int, source models.LedgerSource, sourceID string) {
	if amount == 0 {
		return
	}
	entry := models.NewXPLogEntry(profile.ID, amount, source, sourceID)
	if err := e.store.AppendXPLog(ctx, entry); err != nil {
		metrics.LedgerFailures.WithLabelValues("xp").Inc()
		e.logger.Warn("xp ledger append failed", "user", profile.DisplayName, "source", source, "amount", amount, "err", err)
	}
}

func (e *Engine) appendPoints(ctx context.Context, profile models.UserProfile, amount int, typ models.PointType, source models.LedgerSource, sourceID string) {
	if amount == 0 {
		return
	}
	entry := models.NewPointLogEntry(profile.ID, amount, typ, source, sourceID)
	if err := e.store.AppendPointLog(ctx, entry); err != nil {
		metrics.LedgerFailures.WithLabelValues("points").Inc()
		e.logger.Warn("point ledger append failed", "user", profile.DisplayName, "source", source, "amount", amount, "err", err)
	}
}

func (e *Engine) randomGift() models.GiftItem {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return models.GiftItems[e.rng.IntN(len(models.GiftItems))]
}
