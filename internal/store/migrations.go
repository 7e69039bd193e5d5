package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version"`
	AvailableVersion int             `json:"available_version"`
	Pending          []MigrationInfo `json:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// Identifiers of the seeded system relationship types.
const (
	SystemTypeBlocksID     = "00000000-0000-4000-8000-000000000001"
	SystemTypeRelatesToID  = "00000000-0000-4000-8000-000000000002"
	SystemTypeDuplicatesID = "00000000-0000-4000-8000-000000000003"
	SystemTypeParentOfID   = "00000000-0000-4000-8000-000000000004"
)

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: projects and tasks",
		SQL: `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`,
	},
	{
		Version:     2,
		Description: "relationship types, relationships and system type seeds",
		SQL: `
CREATE TABLE IF NOT EXISTS relationship_types (
  id TEXT PRIMARY KEY,
  type_name TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  description TEXT,
  is_system INTEGER NOT NULL DEFAULT 0,
  is_directional INTEGER NOT NULL DEFAULT 0,
  forward_label TEXT,
  reverse_label TEXT,
  enforces_blocking INTEGER NOT NULL DEFAULT 0,
  blocking_disabled_statuses TEXT,
  blocking_source_statuses TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS relationships (
  id TEXT PRIMARY KEY,
  source_task_id TEXT NOT NULL,
  target_task_id TEXT NOT NULL,
  relationship_type_id TEXT NOT NULL,
  data TEXT,
  note TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  CHECK (source_task_id <> target_task_id),
  FOREIGN KEY (source_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
  FOREIGN KEY (target_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
  FOREIGN KEY (relationship_type_id) REFERENCES relationship_types(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_task_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_task_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(relationship_type_id, created_at DESC);

INSERT OR IGNORE INTO relationship_types (
  id, type_name, display_name, description, is_system, is_directional, forward_label, reverse_label,
  enforces_blocking, blocking_disabled_statuses, blocking_source_statuses, created_at, updated_at
) VALUES
  ('` + SystemTypeBlocksID + `', 'blocks', 'Blocks', 'Source task must finish before the target task can progress', 1, 1, 'blocks', 'blocked by',
   1, '["inprogress","inreview","done"]', '["todo","inprogress","inreview"]', '2024-01-01T00:00:00.000000000Z', '2024-01-01T00:00:00.000000000Z'),
  ('` + SystemTypeRelatesToID + `', 'relates_to', 'Relates to', 'Tasks are related', 1, 0, NULL, NULL,
   0, NULL, NULL, '2024-01-01T00:00:00.000000000Z', '2024-01-01T00:00:00.000000000Z'),
  ('` + SystemTypeDuplicatesID + `', 'duplicates', 'Duplicates', 'Source task duplicates the target task', 1, 1, 'duplicates', 'duplicated by',
   0, NULL, NULL, '2024-01-01T00:00:00.000000000Z', '2024-01-01T00:00:00.000000000Z'),
  ('` + SystemTypeParentOfID + `', 'parent_of', 'Parent of', 'Source task contains the target task', 1, 1, 'parent of', 'child of',
   0, NULL, NULL, '2024-01-01T00:00:00.000000000Z', '2024-01-01T00:00:00.000000000Z');
`,
	},
	{
		Version:     3,
		Description: "task templates and template groups",
		SQL: `
CREATE TABLE IF NOT EXISTS template_groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  parent_group_id TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (parent_group_id) REFERENCES template_groups(id) ON DELETE RESTRICT
);

CREATE TABLE IF NOT EXISTS task_templates (
  id TEXT PRIMARY KEY,
  group_id TEXT,
  template_name TEXT NOT NULL UNIQUE,
  template_title TEXT NOT NULL,
  ticket_title TEXT NOT NULL,
  ticket_description TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (group_id) REFERENCES template_groups(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_template_groups_parent ON template_groups(parent_group_id);
CREATE INDEX IF NOT EXISTS idx_task_templates_group ON task_templates(group_id);
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist.
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(migrationsTableSQL)
	return err
}

// currentVersion returns the highest applied migration version, or 0 if none.
func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// runMigrations applies all pending migrations in order.
func runMigrations(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range sortedMigrations() {
		if m.Version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// MigrationPlan returns the current migration status without applying anything.
func MigrationPlan(db *sql.DB) (*MigrationStatus, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	current, err := currentVersion(db)
	if err != nil {
		return nil, err
	}

	sorted := sortedMigrations()
	available := 0
	if len(sorted) > 0 {
		available = sorted[len(sorted)-1].Version
	}

	var pending []MigrationInfo
	for _, m := range sorted {
		if m.Version > current {
			pending = append(pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}

	return &MigrationStatus{
		CurrentVersion:   current,
		AvailableVersion: available,
		Pending:          pending,
	}, nil
}
