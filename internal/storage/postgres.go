// ABOUTME: Postgres implementation of Repository using a pgx connection pool.
// ABOUTME: Intended for a shared tribe server; schema is created on open.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/tribe/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Repository on Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPool creates a bounded connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, config)
}

// OpenPostgres connects and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	s := NewPostgresStore(pool)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// NewPostgresStore wraps an existing pool. The schema is not touched.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgSchema mirrors the SQLite schema with native timestamp and JSONB columns.
var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS workout_logs (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		logged_at TIMESTAMPTZ NOT NULL,
		kind TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		calories INTEGER,
		vibes INTEGER,
		custom_activity TEXT NOT NULL DEFAULT '',
		exercises JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS gamification_states (
		user_name TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL,
		state JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_name, tribe_id)
	)`,
	`CREATE TABLE IF NOT EXISTS xp_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS point_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS gift_transactions (
		id TEXT PRIMARY KEY,
		from_user TEXT NOT NULL,
		to_user TEXT NOT NULL,
		gift_id TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_user_logged ON workout_logs(user_name, logged_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_tribe_logged ON workout_logs(tribe_id, logged_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_xp_logs_user ON xp_logs(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_point_logs_user ON point_logs(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_gifts_tribe ON gift_transactions(tribe_id, created_at DESC)`,
}

// InitSchema creates any missing tables and indexes.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateLog stores a new workout log.
func (s *PostgresStore) CreateLog(ctx context.Context, l *models.WorkoutLog) error {
	exercises, err := json.Marshal(l.Exercises)
	if err != nil {
		return fmt.Errorf("encode exercises: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO workout_logs (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)`,
		l.ID.String(), l.User, l.TribeID, l.Date.UTC(), l.Kind.String(), l.DurationMinutes,
		l.Calories, l.Vibes, l.CustomActivity, string(exercises), l.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	return nil
}

// GetLog retrieves a log by ID or ID prefix.
func (s *PostgresStore) GetLog(ctx context.Context, idOrPrefix string) (*models.WorkoutLog, error) {
	id, err := s.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	l, err := scanPgLog(s.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM workout_logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return l, err
}

// ListLogs retrieves logs matching f, newest first.
func (s *PostgresStore) ListLogs(ctx context.Context, f LogFilter) ([]*models.WorkoutLog, error) {
	query := `SELECT ` + logColumns + ` FROM workout_logs WHERE true`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.User != "" {
		query += ` AND user_name = ` + arg(f.User)
	}
	if f.TribeID != "" {
		query += ` AND tribe_id = ` + arg(f.TribeID)
	}
	if f.Kind != nil {
		query += ` AND kind = ` + arg(f.Kind.String())
	}
	if f.Since != nil {
		query += ` AND logged_at >= ` + arg(f.Since.UTC())
	}
	query += ` ORDER BY logged_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.WorkoutLog
	for rows.Next() {
		l, err := scanPgLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// UserLogs returns one user's logs, newest first.
func (s *PostgresStore) UserLogs(ctx context.Context, user, tribeID string) ([]*models.WorkoutLog, error) {
	return s.ListLogs(ctx, LogFilter{User: user, TribeID: tribeID})
}

// AllLogs returns every log in a tribe (or all tribes), newest first.
func (s *PostgresStore) AllLogs(ctx context.Context, tribeID string) ([]*models.WorkoutLog, error) {
	return s.ListLogs(ctx, LogFilter{TribeID: tribeID})
}

// DeleteLog removes a log by ID or prefix.
func (s *PostgresStore) DeleteLog(ctx context.Context, idOrPrefix string) error {
	id, err := s.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM workout_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

func (s *PostgresStore) resolveLogID(ctx context.Context, idOrPrefix string) (string, error) {
	if isFullID(idOrPrefix) {
		return idOrPrefix, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id FROM workout_logs WHERE id LIKE $1 || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve log ID: %w", err)
	}
	matches, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", fmt.Errorf("resolve log ID: %w", err)
	}
	return pickMatch(idOrPrefix, matches)
}

func scanPgLog(row pgx.Row) (*models.WorkoutLog, error) {
	var l models.WorkoutLog
	var id, kind string
	var exercises []byte

	err := row.Scan(&id, &l.User, &l.TribeID, &l.Date, &kind, &l.DurationMinutes,
		&l.Calories, &l.Vibes, &l.CustomActivity, &exercises, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan log: %w", err)
	}
	l.ID, _ = uuid.Parse(id)
	if l.Kind, err = models.ParseWorkoutKind(kind); err != nil {
		return nil, fmt.Errorf("scan log %s: %w", id, err)
	}
	if len(exercises) > 0 && string(exercises) != "null" {
		if err := json.Unmarshal(exercises, &l.Exercises); err != nil {
			return nil, fmt.Errorf("decode exercises for %s: %w", id, err)
		}
	}
	return &l, nil
}

// GamificationStates returns states keyed by user display name.
func (s *PostgresStore) GamificationStates(ctx context.Context, tribeID string) (map[string]*models.UserGamificationState, error) {
	records, err := s.queryStates(ctx, tribeID)
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
func (s *PostgresStore) ListStates(ctx context.Context) ([]StateRecord, error) {
	return s.queryStates(ctx, "")
}

func (s *PostgresStore) queryStates(ctx context.Context, tribeID string) ([]StateRecord, error) {
	query := `SELECT user_name, tribe_id, user_id, state FROM gamification_states`
	var args []any
	if tribeID != "" {
		query += ` WHERE tribe_id = $1`
		args = append(args, tribeID)
	}
	query += ` ORDER BY user_name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gamification states: %w", err)
	}
	defer rows.Close()

	var records []StateRecord
	for rows.Next() {
		var r StateRecord
		var raw []byte
		if err := rows.Scan(&r.Profile.DisplayName, &r.Profile.TribeID, &r.Profile.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan gamification state: %w", err)
		}
		r.State = &models.UserGamificationState{}
		if err := json.Unmarshal(raw, r.State); err != nil {
			return nil, fmt.Errorf("decode state for %s: %w", r.Profile.DisplayName, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveGamificationState upserts a user's state.
func (s *PostgresStore) SaveGamificationState(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO gamification_states (user_name, tribe_id, user_id, state, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
		ON CONFLICT (user_name, tribe_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`,
		profile.DisplayName, profile.TribeID, profile.ID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("save gamification state: %w", err)
	}
	return nil
}

// AppendXPLog stores an XP ledger row.
func (s *PostgresStore) AppendXPLog(ctx context.Context, e *models.XPLogEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO xp_logs (id, user_id, amount, source, source_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID.String(), e.UserID, e.Amount, string(e.Source), e.SourceID, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("append xp log: %w", err)
	}
	return nil
}

// AppendPointLog stores a point ledger row.
func (s *PostgresStore) AppendPointLog(ctx context.Context, e *models.PointLogEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO point_logs (id, user_id, amount, type, source, source_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID.String(), e.UserID, e.Amount, string(e.Type), string(e.Source), e.SourceID, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("append point log: %w", err)
	}
	return nil
}

// ListXPLogs returns XP rows, newest first.
func (s *PostgresStore) ListXPLogs(ctx context.Context, userID string, limit int) ([]*models.XPLogEntry, error) {
	query, args := pgUserLimitClause(`SELECT id, user_id, amount, source, source_id, created_at FROM xp_logs`, userID, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list xp logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.XPLogEntry
	for rows.Next() {
		var e models.XPLogEntry
		var id, source string
		if err := rows.Scan(&id, &e.UserID, &e.Amount, &source, &e.SourceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan xp log: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.Source = models.LedgerSource(source)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ListPointLogs returns point rows, newest first.
func (s *PostgresStore) ListPointLogs(ctx context.Context, userID string, limit int) ([]*models.PointLogEntry, error) {
	query, args := pgUserLimitClause(`SELECT id, user_id, amount, type, source, source_id, created_at FROM point_logs`, userID, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list point logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointLogEntry
	for rows.Next() {
		var e models.PointLogEntry
		var id, typ, source string
		if err := rows.Scan(&id, &e.UserID, &e.Amount, &typ, &source, &e.SourceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan point log: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.Type = models.PointType(typ)
		e.Source = models.LedgerSource(source)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func pgUserLimitClause(query, userID string, limit int) (string, []any) {
	var args []any
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(` WHERE user_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return query, args
}

// RecordGift stores a gift transaction.
func (s *PostgresStore) RecordGift(ctx context.Context, g *models.GiftTransaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO gift_transactions (id, from_user, to_user, gift_id, tribe_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID.String(), g.From, g.To, g.GiftID, g.TribeID, g.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record gift: %w", err)
	}
	return nil
}

// ListGifts returns gift transactions in a tribe (or all), newest first.
func (s *PostgresStore) ListGifts(ctx context.Context, tribeID string, limit int) ([]*models.GiftTransaction, error) {
	query := `SELECT id, from_user, to_user, gift_id, tribe_id, created_at FROM gift_transactions`
	var args []any
	if tribeID != "" {
		args = append(args, tribeID)
		query += fmt.Sprintf(` WHERE tribe_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.GiftTransaction
	for rows.Next() {
		var g models.GiftTransaction
		var id string
		if err := rows.Scan(&id, &g.From, &g.To, &g.GiftID, &g.TribeID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		g.ID, _ = uuid.Parse(id)
		gifts = append(gifts, &g)
	}
	return gifts, rows.Err()
}
