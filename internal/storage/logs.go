// ABOUTME: Workout log CRUD operations for SQLite storage.
// ABOUTME: Logs resolve by full ID or unique prefix; exercises are stored as JSON.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/tribe/internal/models"
)

// timeLayout is fixed width and always UTC, so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

const logColumns = `id, user_name, tribe_id, logged_at, kind, duration_minutes, calories, vibes, custom_activity, exercises, created_at`

// CreateLog stores a new workout log.
func (d *DB) CreateLog(ctx context.Context, l *models.WorkoutLog) error {
	exercises, err := json.Marshal(l.Exercises)
	if err != nil {
		return fmt.Errorf("encode exercises: %w", err)
	}

	query := `INSERT INTO workout_logs (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = d.db.ExecContext(ctx, query,
		l.ID.String(),
		l.User,
		l.TribeID,
		formatTime(l.Date),
		l.Kind.String(),
		l.DurationMinutes,
		l.Calories,
		l.Vibes,
		l.CustomActivity,
		string(exercises),
		formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	return nil
}

// GetLog retrieves a log by ID or ID prefix.
func (d *DB) GetLog(ctx context.Context, idOrPrefix string) (*models.WorkoutLog, error) {
	id, err := d.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + logColumns + ` FROM workout_logs WHERE id = ?`
	l, err := scanLog(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return l, err
}

// ListLogs retrieves logs matching f, newest first.
func (d *DB) ListLogs(ctx context.Context, f LogFilter) ([]*models.WorkoutLog, error) {
	query := `SELECT ` + logColumns + ` FROM workout_logs WHERE 1=1`
	var args []interface{}

	if f.User != "" {
		query += ` AND user_name = ?`
		args = append(args, f.User)
	}
	if f.TribeID != "" {
		query += ` AND tribe_id = ?`
		args = append(args, f.TribeID)
	}
	if f.Kind != nil {
		query += ` AND kind = ?`
		args = append(args, f.Kind.String())
	}
	if f.Since != nil {
		query += ` AND logged_at >= ?`
		args = append(args, formatTime(*f.Since))
	}
	query += ` ORDER BY logged_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.WorkoutLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// UserLogs returns one user's logs, newest first.
func (d *DB) UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error) {
	return d.ListLogs(ctx, LogFilter{User: user, TribeID: tribeID})
}

// AllLogs returns every log in a tribe (or all tribes), newest first.
func (d *DB) AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error) {
	return d.ListLogs(ctx, LogFilter{TribeID: tribeID})
}

// DeleteLog removes a log by ID or prefix.
func (d *DB) DeleteLog(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM workout_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

// resolveLogID finds the full ID from a prefix.
func (d *DB) resolveLogID(ctx context.Context, idOrPrefix string) (string, error) {
	if isFullID(idOrPrefix) {
		return idOrPrefix, nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id FROM workout_logs WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve log ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan log ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve log ID: %w", err)
	}

	return pickMatch(idOrPrefix, matches)
}

func pickMatch(idOrPrefix string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLog(row rowScanner) (*models.WorkoutLog, error) {
	var l models.WorkoutLog
	var idStr, kind, loggedAt, createdAt string
	var calories, vibes sql.NullInt64
	var activity, exercises sql.NullString

	err := row.Scan(&idStr, &l.User, &l.TribeID, &loggedAt, &kind, &l.DurationMinutes,
		&calories, &vibes, &activity, &exercises, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan log: %w", err)
	}

	l.ID, _ = uuid.Parse(idStr)
	l.Date = parseTime(loggedAt)
	l.CreatedAt = parseTime(createdAt)
	if l.Kind, err = models.ParseWorkoutKind(kind); err != nil {
		return nil, fmt.Errorf("scan log %s: %w", idStr, err)
	}
	if calories.Valid {
		c := int(calories.Int64)
		l.Calories = &c
	}
	if vibes.Valid {
		v := int(vibes.Int64)
		l.Vibes = &v
	}
	l.CustomActivity = activity.String
	if exercises.Valid && exercises.String != "" && exercises.String != "null" {
		if err := json.Unmarshal([]byte(exercises.String), &l.Exercises); err != nil {
			return nil, fmt.Errorf("decode exercises for %s: %w", idStr, err)
		}
	}
	return &l, nil
}
