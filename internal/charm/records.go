// ABOUTME: Gamification state, XP/point ledgers, and gifts for Charm KV storage.
// ABOUTME: States are keyed by tribe and user; ledger rows and gifts by their ID.
package charm

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
)

func stateKey(profile models.UserProfile) string {
	return StatePrefix + profile.TribeID + "/" + profile.DisplayName
}

// GamificationStates returns states keyed by user display name.
func (c *Client) GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error) {
	records, err := c.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	states := make(map[string]*models.UserGamificationState, len(records))
	for _, r := range records {
		if tribeID != "" && r.Profile.TribeID != tribeID {
			continue
		}
		states[r.Profile.DisplayName] = r.State
	}
	return states, nil
}

// ListStates returns every stored state with its owner, ordered by name.
func (c *Client) ListStates(_ context.Context) ([]storage.StateRecord, error) {
	all, err := decodeAll[storage.StateRecord](c, StatePrefix)
	if err != nil {
		return nil, fmt.Errorf("list gamification states: %w", err)
	}
	records := make([]storage.StateRecord, 0, len(all))
	for _, r := range all {
		if r.State != nil {
			records = append(records, *r)
		}
	}
	slices.SortFunc(records, func(a, b storage.StateRecord) int {
		return strings.Compare(a.Profile.DisplayName, b.Profile.DisplayName)
	})
	return records, nil
}

// SaveGamificationState replaces a user's state.
func (c *Client) SaveGamificationState(_ context.Context, profile models.UserProfile, state *models.UserGamificationState) error {
	data, err := json.Marshal(storage.StateRecord{Profile: profile, State: state})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := c.set(stateKey(profile), data); err != nil {
		return fmt.Errorf("save gamification state: %w", err)
	}
	return nil
}

func (c *Client) put(prefix, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.set(prefix+id, data)
}

// AppendXPLog stores an XP ledger row.
func (c *Client) AppendXPLog(_ context.Context, e *models.XPLogEntry) error {
	if err := c.put(XPPrefix, e.ID.String(), e); err != nil {
		return fmt.Errorf("append xp log: %w", err)
	}
	return nil
}

// AppendPointLog stores a point ledger row.
func (c *Client) AppendPointLog(_ context.Context, e *models.PointLogEntry) error {
	if err := c.put(PointPrefix, e.ID.String(), e); err != nil {
		return fmt.Errorf("append point log: %w", err)
	}
	return nil
}

// ListXPLogs returns XP rows, newest first. An empty userID lists everyone.
func (c *Client) ListXPLogs(_ context.Context, userID string, limit int) ([]*models.XPLogEntry, error) {
	entries, err := decodeAll[models.XPLogEntry](c, XPPrefix)
	if err != nil {
		return nil, fmt.Errorf("list xp logs: %w", err)
	}
	return newestFirst(entries, limit,
		func(e *models.XPLogEntry) bool { return userID != "" && e.UserID != userID },
		func(e *models.XPLogEntry) time.Time { return e.CreatedAt }), nil
}

// ListPointLogs returns point rows, newest first. An empty userID lists everyone.
func (c *Client) ListPointLogs(_ context.Context, userID string, limit int) ([]*models.PointLogEntry, error) {
	entries, err := decodeAll[models.PointLogEntry](c, PointPrefix)
	if err != nil {
		return nil, fmt.Errorf("list point logs: %w", err)
	}
	return newestFirst(entries, limit,
		func(e *models.PointLogEntry) bool { return userID != "" && e.UserID != userID },
		func(e *models.PointLogEntry) time.Time { return e.CreatedAt }), nil
}

// RecordGift stores a gift transaction.
func (c *Client) RecordGift(_ context.Context, g *models.GiftTransaction) error {
	if err := c.put(GiftPrefix, g.ID.String(), g); err != nil {
		return fmt.Errorf("record gift: %w", err)
	}
	return nil
}

// ListGifts returns gift transactions in a tribe (or all), newest first.
func (c *Client) ListGifts(_ context.Context, tribeID string, limit int) ([]*models.GiftTransaction, error) {
	gifts, err := decodeAll[models.GiftTransaction](c, GiftPrefix)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	return newestFirst(gifts, limit,
		func(g *models.GiftTransaction) bool { return tribeID != "" && g.TribeID != tribeID },
		func(g *models.GiftTransaction) time.Time { return g.CreatedAt }), nil
}

func newestFirst[T any](items []*T, limit int, drop func(*T) bool, at func(*T) time.Time) []*T {
	items = slices.DeleteFunc(items, drop)
	slices.SortFunc(items, func(a, b *T) int {
		return at(b).Compare(at(a))
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
