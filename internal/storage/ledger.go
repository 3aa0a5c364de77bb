// ABOUTME: XP/point ledger and gift transaction storage for SQLite.
// ABOUTME: Ledger rows are append-only; listing is for history display.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/tribe/internal/models"
)

// AppendXPLog stores an XP ledger row.
func (d *DB) AppendXPLog(ctx context.Context, e *models.XPLogEntry) error {
	query := `INSERT INTO xp_logs (id, user_id, amount, source, source_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		e.ID.String(), e.UserID, e.Amount, string(e.Source), e.SourceID, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("append xp log: %w", err)
	}
	return nil
}

// AppendPointLog stores a point ledger row.
func (d *DB) AppendPointLog(ctx context.Context, e *models.PointLogEntry) error {
	query := `INSERT INTO point_logs (id, user_id, amount, type, source, source_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		e.ID.String(), e.UserID, e.Amount, string(e.Type), string(e.Source), e.SourceID, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("append point log: %w", err)
	}
	return nil
}

// ListXPLogs returns XP rows, newest first. An empty userID lists everyone.
func (d *DB) ListXPLogs(ctx context.Context, userID string, limit int) ([]*models.XPLogEntry, error) {
	query := `SELECT id, user_id, amount, source, source_id, created_at FROM xp_logs`
	query, args := userLimitClause(query, userID, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list xp logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.XPLogEntry
	for rows.Next() {
		var e models.XPLogEntry
		var id, source, createdAt string
		var sourceID sql.NullString
		if err := rows.Scan(&id, &e.UserID, &e.Amount, &source, &sourceID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan xp log: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.Source = models.LedgerSource(source)
		e.SourceID = sourceID.String
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ListPointLogs returns point rows, newest first. An empty userID lists everyone.
func (d *DB) ListPointLogs(ctx context.Context, userID string, limit int) ([]*models.PointLogEntry, error) {
	query := `SELECT id, user_id, amount, type, source, source_id, created_at FROM point_logs`
	query, args := userLimitClause(query, userID, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list point logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointLogEntry
	for rows.Next() {
		var e models.PointLogEntry
		var id, typ, source, createdAt string
		var sourceID sql.NullString
		if err := rows.Scan(&id, &e.UserID, &e.Amount, &typ, &source, &sourceID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan point log: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.Type = models.PointType(typ)
		e.Source = models.LedgerSource(source)
		e.SourceID = sourceID.String
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func userLimitClause(query, userID string, limit int) (string, []interface{}) {
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return query, args
}

// RecordGift stores a gift transaction.
func (d *DB) RecordGift(ctx context.Context, g *models.GiftTransaction) error {
	query := `INSERT INTO gift_transactions (id, from_user, to_user, gift_id, tribe_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		g.ID.String(), g.From, g.To, g.GiftID, g.TribeID, formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("record gift: %w", err)
	}
	return nil
}

// ListGifts returns gift transactions in a tribe (or all), newest first.
func (d *DB) ListGifts(ctx context.Context, tribeID string, limit int) ([]*models.GiftTransaction, error) {
	query := `SELECT id, from_user, to_user, gift_id, tribe_id, created_at FROM gift_transactions`
	var args []interface{}
	if tribeID != "" {
		query += ` WHERE tribe_id = ?`
		args = append(args, tribeID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.GiftTransaction
	for rows.Next() {
		var g models.GiftTransaction
		var id, createdAt string
		if err := rows.Scan(&id, &g.From, &g.To, &g.GiftID, &g.TribeID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		g.ID, _ = uuid.Parse(id)
		g.CreatedAt = parseTime(createdAt)
		gifts = append(gifts, &g)
	}
	return gifts, rows.Err()
}
