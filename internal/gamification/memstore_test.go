// ABOUTME: In-memory Store used by engine and team stats tests.
// ABOUTME: Records ledger rows and saves so tests can assert side effects.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harperreed/tribe/internal/models"
)

type memStore struct {
	mu     sync.Mutex
	logs   []*models.WorkoutLog
	states map[string]*models.UserGamificationState
	xp     []*models.XPLogEntry
	points []*models.PointLogEntry
	gifts  []*models.GiftTransaction

	failLedger   bool
	allLogsErr   error
	allLogsCalls int
	saves        int
}

func newMemStore() *memStore {
	return &memStore{states: map[string]*models.UserGamificationState{}}
}

func inTribe(l *models.WorkoutLog, tribeID string) bool {
	return tribeID == "" || l.TribeID == tribeID
}

func (m *memStore) UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.WorkoutLog
	for _, l := range m.logs {
		if l.User == user && inTribe(l, tribeID) {
			out = append(out, l)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memStore) AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allLogsCalls++
	if m.allLogsErr != nil {
		return nil, m.allLogsErr
	}
	var out []*models.WorkoutLog
	for _, l := range m.logs {
		if inTribe(l, tribeID) {
			out = append(out, l)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memStore) CreateLog(ctx context.Context, l *models.WorkoutLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
	return nil
}

func (m *memStore) DeleteLog(ctx context.Context, idOrPrefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.logs {
		if strings.HasPrefix(l.ID.String(), idOrPrefix) {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not found: %s", idOrPrefix)
}

func (m *memStore) GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*models.UserGamificationState, len(m.states))
	for user, s := range m.states {
		out[user] = s.Clone()
	}
	return out, nil
}

func (m *memStore) SaveGamificationState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[profile.DisplayName] = state.Clone()
	m.saves++
	return nil
}

func (m *memStore) AppendXPLog(ctx context.Context, e *models.XPLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLedger {
		return errors.New("ledger offline")
	}
	m.xp = append(m.xp, e)
	return nil
}

func (m *memStore) AppendPointLog(ctx context.Context, e *models.PointLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLedger {
		return errors.New("ledger offline")
	}
	m.points = append(m.points, e)
	return nil
}

func (m *memStore) RecordGift(ctx context.Context, g *models.GiftTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gifts = append(m.gifts, g)
	return nil
}

func (m *memStore) state(user string) *models.UserGamificationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[user]
}
