// CLI tool to apply or roll back the embedded database migrations.
// Usage: go run ./cmd/migrate [up|down|version] (default up)
// "down" rolls back a single migration.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"lg/macro-group-api/db"
)

func main() {
	// .env is optional; DB_URL may come straight from the environment.
	_ = godotenv.Load()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DB_URL environment variable is required")
		os.Exit(1)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := db.NewMigrator(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open migrations: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := run(m, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error running %s: %v\n", cmd, err)
		m.Close()
		os.Exit(1)
	}
}

func run(m *migrate.Migrate, cmd string) error {
	switch cmd {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No pending migrations.")
			return nil
		}
		if err != nil {
			return err
		}
	case "down":
		err := m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
			fmt.Println("Nothing to roll back.")
			return nil
		}
		if err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q, expected up, down or version", cmd)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
