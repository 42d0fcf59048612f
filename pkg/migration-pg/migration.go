package migrationpg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	"github.com/jackc/pgx/v5"
)

// Migration is one versioned schema change read from a NNN_name.up.sql /
// NNN_name.down.sql pair.
type Migration struct {
	ID      string
	Name    string
	UpSQL   string
	DownSQL string
}

// Runner handles PostgreSQL migration execution
type Runner struct {
	client    postgresql.PostgreSQLClient
	logger    logger.Interface
	source    fs.FS
	schema    string
	tableName string
}

// Config for migration runner
type Config struct {
	// Source holds the *.up.sql and *.down.sql files at its root.
	Source    fs.FS
	Schema    string // PostgreSQL schema name (default: "public")
	TableName string // Migration table name (default: "schema_migrations")
}

// NewRunner creates a new migration runner for PostgreSQL
func NewRunner(client postgresql.PostgreSQLClient, log logger.Interface, config Config) *Runner {
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.TableName == "" {
		config.TableName = "schema_migrations"
	}

	return &Runner{
		client:    client,
		logger:    log,
		source:    config.Source,
		schema:    config.Schema,
		tableName: config.TableName,
	}
}

func (r *Runner) table() string {
	return fmt.Sprintf("%s.%s", r.schema, r.tableName)
}

// EnsureMigrationTable creates the bookkeeping table if it doesn't exist
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	_, err := r.client.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, r.table()))
	return err
}

// AppliedMigrations returns the set of applied migration IDs
func (r *Runner) AppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, fmt.Sprintf("SELECT id FROM %s ORDER BY id", r.table()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// LoadMigrations reads every *.up.sql file in the source, sorted by name.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	upFiles, err := fs.Glob(r.source, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		m, err := r.parseMigration(upFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse migration %s: %w", upFile, err)
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

func (r *Runner) parseMigration(upFile string) (Migration, error) {
	upContent, err := fs.ReadFile(r.source, upFile)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(path.Base(upFile), ".up.sql")
	name := id
	if _, after, ok := strings.Cut(id, "_"); ok {
		name = after
	}

	m := Migration{
		ID:    id,
		Name:  name,
		UpSQL: strings.TrimSpace(string(upContent)),
	}

	// A missing down file only matters when reverting.
	if downContent, err := fs.ReadFile(r.source, strings.TrimSuffix(upFile, ".up.sql")+".down.sql"); err == nil {
		m.DownSQL = strings.TrimSpace(string(downContent))
	}

	return m, nil
}

// MigrateUp applies up to steps pending migrations, or all of them when
// steps is zero. Each migration runs in its own transaction together with
// its bookkeeping row.
func (r *Runner) MigrateUp(ctx context.Context, steps int) error {
	if err := r.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toApply []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			toApply = append(toApply, m)
		}
	}

	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}

	for _, m := range toApply {
		if m.UpSQL == "" {
			r.logger.Warn("Skipping empty migration", logger.NewField("migration", m.ID))
			continue
		}

		err := postgresql.WithTxOptions(ctx, r.client, pgx.TxOptions{}, func(txCtx context.Context) error {
			if _, err := r.client.Exec(txCtx, m.UpSQL); err != nil {
				return err
			}
			_, err := r.client.Exec(txCtx,
				fmt.Sprintf("INSERT INTO %s (id, name, applied_at) VALUES ($1, $2, NOW())", r.table()),
				m.ID, m.Name,
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}

		r.logger.Info("Applied migration", logger.NewField("migration", m.ID))
	}

	return nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0 for down migrations")
	}

	if err := r.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, m := range toRevert {
		if m.DownSQL == "" {
			return fmt.Errorf("no DOWN SQL found for migration %s - cannot revert", m.ID)
		}

		err := postgresql.WithTxOptions(ctx, r.client, pgx.TxOptions{}, func(txCtx context.Context) error {
			if _, err := r.client.Exec(txCtx, m.DownSQL); err != nil {
				return err
			}
			_, err := r.client.Exec(txCtx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table()), m.ID)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", m.ID, err)
		}

		r.logger.Info("Reverted migration", logger.NewField("migration", m.ID))
	}

	return nil
}

// Status lists every known migration and whether it has been applied.
func (r *Runner) Status(ctx context.Context) (map[string]bool, []Migration, error) {
	if err := r.EnsureMigrationTable(ctx); err != nil {
		return nil, nil, err
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return nil, nil, err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}

	return applied, migrations, nil
}
