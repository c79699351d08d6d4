package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
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
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the report archive tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS encounters (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at       TEXT NOT NULL,
			encounter_id   TEXT NOT NULL,
			encounter_name TEXT,
			player         TEXT,
			profile        TEXT NOT NULL,
			fight_start    INTEGER NOT NULL,
			fight_end      INTEGER NOT NULL,
			duration_ms    INTEGER NOT NULL,
			dps            REAL NOT NULL DEFAULT 0,
			skipped        INTEGER NOT NULL DEFAULT 0,
			partial        BOOLEAN NOT NULL DEFAULT false,
			error          TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS efficiency_results (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id          INTEGER NOT NULL REFERENCES encounters(id) ON DELETE CASCADE,
			position           INTEGER NOT NULL,
			ability_id         INTEGER NOT NULL,
			name               TEXT,
			casts              INTEGER NOT NULL,
			max_possible_casts INTEGER NOT NULL,
			ratio              REAL NOT NULL,
			recommended        REAL NOT NULL,
			can_be_improved    BOOLEAN NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS issues (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id    INTEGER NOT NULL REFERENCES encounters(id) ON DELETE CASCADE,
			position     INTEGER NOT NULL,
			severity     TEXT NOT NULL,
			category     TEXT NOT NULL,
			subject_id   TEXT NOT NULL,
			message      TEXT NOT NULL,
			metric_value REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS statistics (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL REFERENCES encounters(id) ON DELETE CASCADE,
			position  INTEGER NOT NULL,
			stat_key  TEXT NOT NULL,
			label     TEXT NOT NULL,
			value     REAL NOT NULL,
			unit      TEXT NOT NULL,
			detail    TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_encounters_name ON encounters(encounter_name, profile)`,
		`CREATE INDEX IF NOT EXISTS idx_efficiency_report ON efficiency_results(report_id)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_report ON issues(report_id)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_severity ON issues(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_statistics_report ON statistics(report_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
