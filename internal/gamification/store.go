// ABOUTME: Data-access contract the gamification engine consumes.
// ABOUTME: Implemented by storage.DB, storage.PostgresStore, and charm.Client.
package gamification

import (
	"context"

	"github.com/harperreed/tribe/internal/models"
)

// LogSource reads workout history. An empty tribeID means all tribes.
type LogSource interface {
	// UserLogs returns one user's logs, newest first.
	UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error)
	// AllLogs returns every log in scope, newest first.
	AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error)
}

// StateStore loads and persists per-user gamification state.
// States are keyed by user display name.
type StateStore interface {
	GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error)
	SaveGamificationState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error
}

// Ledger appends immutable history rows.
type Ledger interface {
	AppendXPLog(ctx context.Context, e *models.XPLogEntry) error
	AppendPointLog(ctx context.Context, e *models.PointLogEntry) error
}

// LogWriter stores and removes workout logs. DeleteLog accepts a full ID or
// a unique prefix.
type LogWriter interface {
	CreateLog(ctx context.Context, l *models.WorkoutLog) error
	DeleteLog(ctx context.Context, idOrPrefix string) error
}

// GiftRecorder records gifts sent between tribe members.
type GiftRecorder interface {
	RecordGift(ctx context.Context, g *models.GiftTransaction) error
}

// Store is everything the engine needs from persistence.
//
// The engine loads a working copy of a user's state, computes, and persists
// it once per call. It assumes at most one concurrent writer per user; callers
// must serialize requests for the same user.
type Store interface {
	LogSource
	LogWriter
	StateStore
	Ledger
	GiftRecorder
}
