// ABOUTME: Repository interface for tribe data storage.
// ABOUTME: Covers workout logs, gamification state, ledgers, gifts, and export.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// ErrNotFound is returned (wrapped with the requested ID) when a lookup misses.
var ErrNotFound = errors.New("not found")

// LogFilter narrows ListLogs. Zero fields do not filter.
type LogFilter struct {
	User    string
	TribeID string
	Kind    *models.WorkoutKind
	Since   *time.Time
	Limit   int
}

// StateRecord is one persisted gamification state with its owner.
type StateRecord struct {
	Profile models.UserProfile            `json:"profile" yaml:"profile"`
	State   *models.UserGamificationState `json:"state" yaml:"state"`
}

// Repository defines the storage interface for tribe data.
// SQLite, Postgres, and Charm KV implement it; it satisfies gamification.Store.
type Repository interface {
	// Workout log operations
	CreateLog(ctx context.Context, l *models.WorkoutLog) error
	GetLog(ctx context.Context, idOrPrefix string) (*models.WorkoutLog, error)
	ListLogs(ctx context.Context, f LogFilter) ([]*models.WorkoutLog, error)
	DeleteLog(ctx context.Context, idOrPrefix string) error
	UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error)
	AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error)

	// Gamification state
	GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error)
	SaveGamificationState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error
	ListStates(ctx context.Context) ([]StateRecord, error)

	// Ledgers
	AppendXPLog(ctx context.Context, e *models.XPLogEntry) error
	AppendPointLog(ctx context.Context, e *models.PointLogEntry) error
	ListXPLogs(ctx context.Context, userID string, limit int) ([]*models.XPLogEntry, error)
	ListPointLogs(ctx context.Context, userID string, limit int) ([]*models.PointLogEntry, error)

	// Gifts
	RecordGift(ctx context.Context, g *models.GiftTransaction) error
	ListGifts(ctx context.Context, tribeID string, limit int) ([]*models.GiftTransaction, error)

	// Lifecycle
	Close() error
}

// isFullID reports whether s looks like a complete UUID rather than a prefix.
func isFullID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
