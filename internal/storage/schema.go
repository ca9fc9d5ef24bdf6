package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// Tables in dependency order. Clearing a snapshot walks them backwards.
var tables = []string{
	"snapshots",
	"projects",
	"project_values",
	"root_hashes",
	"modules",
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		root TEXT NOT NULL,
		projects INTEGER NOT NULL,
		modules INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		vcs_url TEXT NOT NULL,
		description TEXT,
		main_branch TEXT,
		last_known_commit TEXT,
		last_updated TEXT,
		root_signature TEXT NOT NULL,
		supports_flatpak INTEGER NOT NULL,
		record TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_values (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		field TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (project_id, field, value)
	)`,
	`CREATE TABLE IF NOT EXISTS root_hashes (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		hash TEXT NOT NULL,
		PRIMARY KEY (project_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		fingerprint TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		buildsystem TEXT,
		project_id TEXT,
		updatable INTEGER NOT NULL,
		record TEXT NOT NULL
	)`,
	"CREATE INDEX IF NOT EXISTS idx_projects_root_signature ON projects(root_signature)",
	"CREATE INDEX IF NOT EXISTS idx_project_values_field_value ON project_values(field, value)",
	"CREATE INDEX IF NOT EXISTS idx_modules_name ON modules(name)",
}

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return err
		}
		db.logger.Debug("Snapshot schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// checkSchema rejects databases written by another schema version
func (db *DB) checkSchema() error {
	version, err := db.schemaVersion()
	if err != nil {
		return err
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("snapshot database %s has schema version %d, want %d", db.path, version, currentSchemaVersion)
	}
	return nil
}

// schemaVersion returns 0 for a database without a schema_version table
func (db *DB) schemaVersion() (int, error) {
	ctx := context.Background()

	var name string
	err := db.QueryRow(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}
