package migrations

import (
	"database/sql"
	"fmt"

	"buildledger/backend/logging"
)

// RunMigrations executes all migrations in order, recording each one so it
// only ever runs once per database.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"add_director_permissions", AddDirectorPermissions},
		{"add_device_tokens", AddDeviceTokens},
		{"add_receipt_object", AddReceiptObject},
		// For development and PR environments, also seed test data
		{"seed_test_data", SeedTestData},
	}

	for _, migration := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", migration.name).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count == 0 {
			logging.Logger.Infof("Applying migration: %s", migration.name)
			if err := migration.fn(db); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.name, err)
			}

			if _, err := db.Exec("INSERT INTO migrations (name) VALUES (?)", migration.name); err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
		}
	}

	return nil
}

// hasColumn reports whether a table already carries a column. Databases
// created before the consolidated schema lack the newer columns.
func hasColumn(db *sql.DB, table, column string) (bool, error) {
	var present bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&present)
	return present, err
}
