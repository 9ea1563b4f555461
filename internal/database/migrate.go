package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration is one numbered schema change with its optional reversal.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	byVersion := map[int]*migration{}
	for _, entry := range entries {
		filename := entry.Name()
		version := extractVersion(filename)
		if version <= 0 {
			return nil, fmt.Errorf("migration %s has no version prefix", filename)
		}

		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", filename, err)
		}

		current, ok := byVersion[version]
		if !ok {
			current = &migration{version: version}
			byVersion[version] = current
		}
		switch {
		case strings.HasSuffix(filename, ".up.sql"):
			if current.up != "" {
				return nil, fmt.Errorf("duplicate migration version %d", version)
			}
			current.name = filename
			current.up = string(content)
		case strings.HasSuffix(filename, ".down.sql"):
			current.down = string(content)
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, current := range byVersion {
		if current.up == "" {
			return nil, fmt.Errorf("migration %d has no up file", current.version)
		}
		migrations = append(migrations, *current)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func ensureMigrationsTable(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}
	return nil
}

// Migrate applies every pending up migration in version order, each in its
// own transaction.
func Migrate(ctx context.Context, database *sql.DB) error {
	if err := ensureMigrationsTable(ctx, database); err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, current := range migrations {
		var exists int
		err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", current.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking migration %d: %w", current.version, err)
		}
		if exists > 0 {
			continue
		}

		if err := applyMigration(ctx, database, current.up,
			"INSERT INTO schema_migrations (version) VALUES (?)", current.version); err != nil {
			return fmt.Errorf("applying migration %s: %w", current.name, err)
		}
		slog.Info("applied migration", "version", current.version, "file", current.name)
	}

	return nil
}

// Rollback reverts applied migrations newer than target, newest first.
func Rollback(ctx context.Context, database *sql.DB, target int) error {
	if err := ensureMigrationsTable(ctx, database); err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	applied, err := SchemaVersion(ctx, database)
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		current := migrations[i]
		if current.version <= target || current.version > applied {
			continue
		}
		if current.down == "" {
			return fmt.Errorf("migration %d cannot be reverted", current.version)
		}

		if err := applyMigration(ctx, database, current.down,
			"DELETE FROM schema_migrations WHERE version = ?", current.version); err != nil {
			return fmt.Errorf("reverting migration %s: %w", current.name, err)
		}
		slog.Info("reverted migration", "version", current.version)
	}

	return nil
}

// SchemaVersion returns the highest applied migration, or 0.
func SchemaVersion(ctx context.Context, database *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := database.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

func applyMigration(ctx context.Context, database *sql.DB, script string, record string, version int) error {
	transaction, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("executing script: %w", err)
	}
	if _, err := transaction.ExecContext(ctx, record, version); err != nil {
		return fmt.Errorf("recording version %d: %w", version, err)
	}
	return transaction.Commit()
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
