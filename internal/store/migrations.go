package store

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

const runsSchemaV1 = `
CREATE TABLE runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	seed        TEXT NOT NULL,
	weeks       INTEGER NOT NULL,
	reseed      INTEGER NOT NULL,
	coverage    REAL NOT NULL,
	scenarios   TEXT NOT NULL,
	config_json TEXT NOT NULL
);

CREATE TABLE metric_records (
	run_id                   TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq                      INTEGER NOT NULL,
	scenario                 TEXT NOT NULL,
	commune                  TEXT NOT NULL,
	province                 TEXT NOT NULL,
	week                     INTEGER NOT NULL,
	anc_coverage             REAL NOT NULL,
	skilled_birth_attendance REAL NOT NULL,
	immunization_coverage    REAL NOT NULL,
	digital_engagement       REAL NOT NULL,
	care_seeking_delays      INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX idx_metric_records_scenario ON metric_records(run_id, scenario);
`

const runLabelSchemaV2 = `
ALTER TABLE runs ADD COLUMN label TEXT NOT NULL DEFAULT '';
ALTER TABLE runs ADD COLUMN inputs TEXT NOT NULL DEFAULT '';
`

var migrations = []migration{
	{version: 1, name: "runs_and_records", sql: runsSchemaV1},
	{version: 2, name: "run_label_and_inputs", sql: runLabelSchemaV2},
}

func applyMigrations(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_version (
	version     INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	applied_at  TEXT NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(database, m.version)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}
		if err := applyMigration(database, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func migrationApplied(database *sql.DB, version int) (bool, error) {
	var count int
	if err := database.QueryRow(
		"SELECT COUNT(1) FROM schema_version WHERE version = ?",
		version,
	).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyMigration(database *sql.DB, m migration) error {
	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, datetime('now'))",
		m.version, m.name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
