package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at    TEXT NOT NULL,
			command     TEXT NOT NULL,
			version     TEXT NOT NULL,
			threshold   REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS aggregate_metrics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id  INTEGER NOT NULL REFERENCES snapshots(id),
			metric_name  TEXT NOT NULL,
			metric_value REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS daily_rollups (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id),
			session_date    TEXT NOT NULL,
			sessions        INTEGER NOT NULL,
			escalation_rate REAL,
			avg_complexity  REAL,
			avg_resolution  REAL
		)`,

		`CREATE TABLE IF NOT EXISTS risk_flag_counts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
			flag        TEXT NOT NULL,
			count       INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS spike_days (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id    INTEGER NOT NULL REFERENCES snapshots(id),
			session_date   TEXT NOT NULL,
			sessions       INTEGER NOT NULL,
			escalation_pct REAL NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_aggregate_snapshot ON aggregate_metrics(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rollup_snapshot ON daily_rollups(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rollup_date ON daily_rollups(session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_flag_snapshot ON risk_flag_counts(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_spike_snapshot ON spike_days(snapshot_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
