package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"buildledger/backend/database"
	"buildledger/backend/middleware"
	"buildledger/backend/models"
	"buildledger/backend/security"
)

// Fixed identities shared across handler tests
const (
	TestAdminID    = "test-admin-id"
	TestDirectorID = "test-director-id"
	TestLabourID   = "test-labour-id"
	TestProjectID  = "test-project-id"
)

// SetupTestAuth puts an authenticated identity on the request context.
func SetupTestAuth(req *http.Request, userID, name string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UserNameKey, name)
	return req.WithContext(ctx)
}

// SetupTestDB points database.DB at a fresh in-memory store seeded with a
// project and one member of each role.
func SetupTestDB() {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	database.DB = db

	if err := database.CreateTables(db); err != nil {
		panic(err)
	}

	security.InitializeEncryption("handler-test-key")

	now := time.Now()
	users := []struct {
		id, username, name string
	}{
		{TestAdminID, "admin", "Test Admin"},
		{TestDirectorID, "director", "Test Director"},
		{TestLabourID, "labour", "Test Labour"},
	}
	for _, u := range users {
		_, err := db.Exec(`INSERT INTO users (id, username, name, email_verified) VALUES (?, ?, ?, 1)`,
			u.id, u.username, u.name)
		if err != nil {
			panic(err)
		}
	}

	_, err = db.Exec(`INSERT INTO projects (id, name, budget, total_spent, version, created_by, created_at, updated_at)
		VALUES (?, 'Test Site', '100000', '0', 0, ?, ?, ?)`, TestProjectID, TestAdminID, now, now)
	if err != nil {
		panic(err)
	}

	members := []struct {
		userID, name, role string
		canDeleteExpenses  bool
	}{
		{TestAdminID, "Test Admin", models.RoleAdmin, false},
		{TestDirectorID, "Test Director", models.RoleDirector, true},
		{TestLabourID, "Test Labour", models.RoleLabour, false},
	}
	for _, m := range members {
		_, err := db.Exec(`INSERT INTO project_members (project_id, user_id, name, role, can_delete_expenses, added_at)
			VALUES (?, ?, ?, ?, ?, ?)`, TestProjectID, m.userID, m.name, m.role, m.canDeleteExpenses, now)
		if err != nil {
			panic(err)
		}
	}
}

// CleanupTestDB closes the in-memory database.
func CleanupTestDB() {
	if database.DB != nil {
		database.DB.Close()
	}
}
