package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fpm/internal/modules"
	"fpm/internal/project"
)

// Snapshot describes one export run
type Snapshot struct {
	RunID     string    `json:"runId"`
	CreatedAt time.Time `json:"createdAt"`
	Root      string    `json:"root"`
	Projects  int       `json:"projects"`
	Modules   int       `json:"modules"`
}

// WriteSnapshot replaces the database content with projects and mods in a
// single transaction. root is the database root the records came from.
// Modules sharing a fingerprint are stored once.
func (db *DB) WriteSnapshot(ctx context.Context, root string, projects []*project.Project, mods []*modules.Module) (*Snapshot, error) {
	snapshot := &Snapshot{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Root:      root,
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables[i]); err != nil {
				return fmt.Errorf("failed to clear %s: %w", tables[i], err)
			}
		}

		for _, p := range projects {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := insertProject(ctx, tx, p); err != nil {
				return fmt.Errorf("failed to store project %s: %w", p.ID, err)
			}
			snapshot.Projects++
		}

		for _, m := range mods {
			if err := ctx.Err(); err != nil {
				return err
			}
			inserted, err := insertModule(ctx, tx, m)
			if err != nil {
				return fmt.Errorf("failed to store module %s: %w", m.Name(), err)
			}
			if inserted {
				snapshot.Modules++
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO snapshots (run_id, created_at, root, projects, modules) VALUES (?, ?, ?, ?, ?)",
			snapshot.RunID, snapshot.CreatedAt.Format(time.RFC3339), snapshot.Root, snapshot.Projects, snapshot.Modules,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("Wrote snapshot",
		"run", snapshot.RunID,
		"path", db.path,
		"projects", snapshot.Projects,
		"modules", snapshot.Modules,
	)
	return snapshot, nil
}

func insertProject(ctx context.Context, tx *sql.Tx, p *project.Project) error {
	record, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, vcs_url, description, main_branch, last_known_commit,
			last_updated, root_signature, supports_flatpak, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.VCSURL,
		nullString(p.Description), nullString(p.MainBranch), nullString(p.LastKnownCommit), nullString(p.LastUpdated),
		p.RootSignature(), p.SupportsFlatpak(), string(record),
	)
	if err != nil {
		return err
	}

	fields := []struct {
		name   string
		values project.Set
	}{
		{"web_urls", p.WebURLs},
		{"vcs_urls", p.VCSURLs},
		{"siblings", p.Siblings},
		{"flatpak_app_manifests", p.FlatpakAppManifests},
		{"flatpak_module_manifests", p.FlatpakModuleManifests},
		{"flatpak_sources_manifests", p.FlatpakSourcesManifests},
		{"tags", p.Tags},
		{"build_systems", p.BuildSystems},
	}
	for _, field := range fields {
		for _, value := range field.values.Sorted() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO project_values (project_id, field, value) VALUES (?, ?, ?)",
				p.ID, field.name, value,
			); err != nil {
				return err
			}
		}
	}

	for i, hash := range p.RootHashes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO root_hashes (project_id, position, hash) VALUES (?, ?, ?)",
			p.ID, i, hash,
		); err != nil {
			return err
		}
	}
	return nil
}

func insertModule(ctx context.Context, tx *sql.Tx, m *modules.Module) (bool, error) {
	fingerprint, err := m.Fingerprint()
	if err != nil {
		return false, err
	}
	record, err := json.Marshal(m)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO modules (fingerprint, name, buildsystem, project_id, updatable, record)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fingerprint, m.Name(), m.FlatpakModule.BuildSystem, nullString(m.ProjectID),
		m.UsesExternalDataChecker(), string(record),
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// LatestSnapshot returns the last recorded run, or nil when none exists.
func (db *DB) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snapshot  Snapshot
		createdAt string
	)
	err := db.QueryRow(ctx,
		"SELECT run_id, created_at, root, projects, modules FROM snapshots ORDER BY created_at DESC LIMIT 1",
	).Scan(&snapshot.RunID, &createdAt, &snapshot.Root, &snapshot.Projects, &snapshot.Modules)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snapshot.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot timestamp %q: %w", createdAt, err)
	}
	return &snapshot, nil
}

// Count returns the number of rows in one of the snapshot tables.
func (db *DB) Count(ctx context.Context, table string) (int, error) {
	known := false
	for _, t := range tables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("unknown snapshot table %q", table)
	}

	var n int
	err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// ProjectsWithValue returns the IDs of projects whose set field contains
// value, ordered by ID. field is a record key such as "tags".
func (db *DB) ProjectsWithValue(ctx context.Context, field, value string) ([]string, error) {
	rows, err := db.Query(ctx,
		"SELECT project_id FROM project_values WHERE field = ? AND value = ? ORDER BY project_id",
		field, value,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
