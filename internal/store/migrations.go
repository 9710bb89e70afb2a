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

// migrateV1 creates the scan-history tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at      TEXT NOT NULL,
			root          TEXT NOT NULL,
			duration_ms   INTEGER NOT NULL,
			project_count INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scan_projects (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id        INTEGER NOT NULL REFERENCES scans(id),
			name           TEXT NOT NULL,
			path           TEXT NOT NULL,
			kind           TEXT NOT NULL,
			branch         TEXT,
			has_git        BOOLEAN NOT NULL,
			has_changes    BOOLEAN NOT NULL,
			needs_fix      BOOLEAN NOT NULL,
			fix_reason     TEXT,
			python_files   INTEGER NOT NULL,
			relevant_files INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scan_projects_scan ON scan_projects(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_projects_path ON scan_projects(path)`,
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
