// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Tables for workout logs, gamification state, XP/point ledgers, and gifts.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workout_logs (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		logged_at DATETIME NOT NULL,
		kind TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		calories INTEGER,
		vibes INTEGER,
		custom_activity TEXT,
		exercises TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS gamification_states (
		user_name TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL,
		state TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_name, tribe_id)
	);

	CREATE TABLE IF NOT EXISTS xp_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS point_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS gift_transactions (
		id TEXT PRIMARY KEY,
		from_user TEXT NOT NULL,
		to_user TEXT NOT NULL,
		gift_id TEXT NOT NULL,
		tribe_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_logs_logged ON workout_logs(logged_at DESC);
	CREATE INDEX IF NOT EXISTS idx_logs_user_logged ON workout_logs(user_name, logged_at DESC);
	CREATE INDEX IF NOT EXISTS idx_logs_tribe_logged ON workout_logs(tribe_id, logged_at DESC);
	CREATE INDEX IF NOT EXISTS idx_xp_logs_user ON xp_logs(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_point_logs_user ON point_logs(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_gifts_tribe ON gift_transactions(tribe_id, created_at DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
