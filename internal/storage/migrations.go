package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations executes all pending database migrations.
// Migrations are SQL files in the migrations/ directory, named with a
// numeric prefix, and are applied in lexical order exactly once. Schema
// upgrades that add new pattern slots seed them with factory values
// without touching existing user rows.
func RunMigrations(db *DB) error {
	if err := createMigrationsTable(db.DB); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db.DB)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	migrations, err := getMigrationFiles()
	if err != nil {
		return fmt.Errorf("reading migration files: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Name] {
			continue
		}

		log.Printf("Applying migration: %s", m.Name)
		if err := applyMigration(db.DB, m); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}

	return nil
}

type migration struct {
	Name    string
	Content string
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func getAppliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT name FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func getMigrationFiles() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, migration{
			Name:    entry.Name(),
			Content: string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(m.Content); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec("INSERT INTO _migrations (name) VALUES (?)", m.Name); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
