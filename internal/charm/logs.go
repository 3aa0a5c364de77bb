// ABOUTME: Workout log CRUD for Charm KV storage.
// ABOUTME: Filtering and ordering happen in memory since KV has no queries.
package charm

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
)

// CreateLog stores a new workout log.
func (c *Client) CreateLog(_ context.Context, l *models.WorkoutLog) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}
	return c.set(LogPrefix+l.ID.String(), data)
}

// GetLog retrieves a log by ID or ID prefix.
func (c *Client) GetLog(_ context.Context, idOrPrefix string) (*models.WorkoutLog, error) {
	data, err := c.getByIDPrefix(LogPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	l, err := unmarshalJSON[models.WorkoutLog](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal log: %w", err)
	}
	return l, nil
}

// ListLogs retrieves logs matching f, newest first.
func (c *Client) ListLogs(_ context.Context, f storage.LogFilter) ([]*models.WorkoutLog, error) {
	all, err := decodeAll[models.WorkoutLog](c, LogPrefix)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	logs := slices.DeleteFunc(all, func(l *models.WorkoutLog) bool {
		switch {
		case f.User != "" && l.User != f.User:
			return true
		case f.TribeID != "" && l.TribeID != f.TribeID:
			return true
		case f.Kind != nil && l.Kind != *f.Kind:
			return true
		case f.Since != nil && l.Date.Before(*f.Since):
			return true
		}
		return false
	})

	slices.SortFunc(logs, func(a, b *models.WorkoutLog) int {
		return b.Date.Compare(a.Date)
	})
	if f.Limit > 0 && len(logs) > f.Limit {
		logs = logs[:f.Limit]
	}
	return logs, nil
}

// UserLogs returns one user's logs, newest first.
func (c *Client) UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error) {
	return c.ListLogs(ctx, storage.LogFilter{User: user, TribeID: tribeID})
}

// AllLogs returns every log in a tribe (or all tribes), newest first.
func (c *Client) AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error) {
	return c.ListLogs(ctx, storage.LogFilter{TribeID: tribeID})
}

// DeleteLog removes a log by ID or prefix.
func (c *Client) DeleteLog(_ context.Context, idOrPrefix string) error {
	if err := c.deleteByIDPrefix(LogPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}
