package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDB opens the sqlite store and creates the base tables. Further schema
// changes go through migrations.RunMigrations.
func InitDB() error {
	var dbPath string
	if os.Getenv("FLY_APP_NAME") != "" {
		// Running on Fly.io, use the mounted volume
		dbPath = filepath.Join("/data", "buildledger.db")
	} else if os.Getenv("TEST_DB") == "1" {
		dbPath = ":memory:"
	} else {
		dbPath = "./buildledger.db"
	}

	var err error
	// Connection parameters for better concurrency handling
	dsn := dbPath + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Minute * 5)

	if _, err = DB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err = DB.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return err
	}
	if _, err = DB.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}

	if err = DB.Ping(); err != nil {
		return err
	}

	return CreateTables(DB)
}

// CreateTables creates the full schema. Statements are idempotent so tests
// can call this against fresh in-memory databases.
func CreateTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			email_verified BOOLEAN NOT NULL DEFAULT 0,
			device_token TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			budget TEXT NOT NULL,
			total_spent TEXT NOT NULL DEFAULT '0',
			version INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS project_members (
			project_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'labour',
			can_delete_expenses BOOLEAN NOT NULL DEFAULT 0,
			can_delete_members BOOLEAN NOT NULL DEFAULT 0,
			added_at DATETIME NOT NULL,
			PRIMARY KEY (project_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			amount TEXT NOT NULL,
			category TEXT,
			payment_method TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'credit',
			paid_amount TEXT NOT NULL DEFAULT '0',
			expense_date DATETIME NOT NULL,
			receipt_object TEXT,
			created_by TEXT NOT NULL,
			created_by_name TEXT,
			processed_by TEXT,
			processed_by_name TEXT,
			processed_at DATETIME,
			rejection_reason TEXT,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			deleted_by TEXT,
			deleted_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id);`,
		`CREATE TABLE IF NOT EXISTS invitations (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'labour',
			token TEXT UNIQUE NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			invited_by TEXT NOT NULL,
			invited_by_name TEXT,
			accepted_by TEXT,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
