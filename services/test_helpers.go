package services

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"buildledger/backend/database"
	"buildledger/backend/models"
)

const (
	testAdminID    = "svc-admin-id"
	testDirectorID = "svc-director-id"
	testLabourID   = "svc-labour-id"
	testProjectID  = "svc-project-id"
)

// setupTestDB points database.DB at a fresh in-memory store seeded with a
// project and one member of each role.
func setupTestDB() {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	database.DB = db

	if err := database.CreateTables(db); err != nil {
		panic(err)
	}

	now := time.Now()
	_, err = db.Exec(`INSERT INTO projects (id, name, budget, total_spent, version, created_by, created_at, updated_at)
		VALUES (?, 'Service Test Site', '50000', '0', 0, ?, ?, ?)`, testProjectID, testAdminID, now, now)
	if err != nil {
		panic(err)
	}

	members := []struct {
		userID, name, role string
		canDeleteExpenses  bool
	}{
		{testAdminID, "Svc Admin", models.RoleAdmin, false},
		{testDirectorID, "Svc Director", models.RoleDirector, true},
		{testLabourID, "Svc Labour", models.RoleLabour, false},
	}
	for _, m := range members {
		_, err := db.Exec(`INSERT INTO project_members (project_id, user_id, name, role, can_delete_expenses, added_at)
			VALUES (?, ?, ?, ?, ?, ?)`, testProjectID, m.userID, m.name, m.role, m.canDeleteExpenses, now)
		if err != nil {
			panic(err)
		}
	}
}

func cleanupTestDB() {
	if database.DB != nil {
		database.DB.Close()
	}
}
