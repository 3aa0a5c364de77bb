// ABOUTME: Gamification state persistence for SQLite storage.
// ABOUTME: One JSON document per user and tribe, replaced whole on every save.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// GamificationStates returns states keyed by user display name.
// An empty tribeID returns states from every tribe.
func (d *DB) GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error) {
	records, err := d.queryStates(ctx, tribeID)
	if err != nil {
		return nil, err
	}
	states := make(map[string]*models.UserGamificationState, len(records))
	for _, r := range records {
		states[r.Profile.DisplayName] = r.State
	}
	return states, nil
}

// ListStates returns every stored state with its owner.
func (d *DB) ListStates(ctx context.Context) ([]StateRecord, error) {
	return d.queryStates(ctx, "")
}

func (d *DB) queryStates(ctx context.Context, tribeID string) ([]StateRecord, error) {
	query := `SELECT user_name, tribe_id, user_id, state FROM gamification_states`
	var args []interface{}
	if tribeID != "" {
		query += ` WHERE tribe_id = ?`
		args = append(args, tribeID)
	}
	query += ` ORDER BY user_name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gamification states: %w", err)
	}
	defer rows.Close()

	var records []StateRecord
	for rows.Next() {
		var r StateRecord
		var raw string
		if err := rows.Scan(&r.Profile.DisplayName, &r.Profile.TribeID, &r.Profile.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan gamification state: %w", err)
		}
		r.State = &models.UserGamificationState{}
		if err := json.Unmarshal([]byte(raw), r.State); err != nil {
			return nil, fmt.Errorf("decode state for %s: %w", r.Profile.DisplayName, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveGamificationState upserts a user's state.
func (d *DB) SaveGamificationState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	query := `
		INSERT INTO gamification_states (user_name, tribe_id, user_id, state, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_name, tribe_id) DO UPDATE SET
			user_id = excluded.user_id,
			state = excluded.state,
			updated_at = excluded.updated_at
	`
	_, err = d.db.ExecContext(ctx, query,
		profile.DisplayName,
		profile.TribeID,
		profile.ID,
		string(raw),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save gamification state: %w", err)
	}
	return nil
}
