package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool. The busy timeout keeps
// concurrent request handlers from failing fast on writer contention while
// still bounding how long a call can block.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT,
		email TEXT UNIQUE,
		password_hash TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		oauth_provider TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT NOT NULL PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		target_user_id TEXT NOT NULL,
		details_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_logs(actor_id, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_logs(target_user_id, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_logs(action, timestamp DESC);

	CREATE TABLE IF NOT EXISTS password_resets (
		token TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_password_resets_expiry ON password_resets(expires_at);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
