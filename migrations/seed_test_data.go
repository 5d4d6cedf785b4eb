package migrations

import (
	"database/sql"
	"os"
	"time"

	"buildledger/backend/logging"
)

// SeedTestData inserts a small working data set for development and PR
// deployments. Production databases are never seeded.
func SeedTestData(db *sql.DB) error {
	isDevelopment := os.Getenv("APP_ENV") != "production" &&
		os.Getenv("ENVIRONMENT") != "production" &&
		os.Getenv("ENV") != "production"
	isPRDeployment := os.Getenv("PR_DEPLOYMENT") == "true"

	if !isDevelopment && !isPRDeployment {
		logging.Logger.Info("Skipping test data seeding in production")
		return nil
	}

	logging.Logger.Info("Seeding test data...")
	now := time.Now()

	users := []struct {
		id, username, name string
	}{
		{"seed-admin-1", "amina", "Amina"},
		{"seed-director-1", "joseph", "Joseph"},
		{"seed-labour-1", "kasim", "Kasim"},
	}
	for _, u := range users {
		_, err := db.Exec(`INSERT OR IGNORE INTO users (id, username, name, email_verified)
			VALUES (?, ?, ?, 1)`, u.id, u.username, u.name)
		if err != nil {
			return err
		}
	}

	_, err := db.Exec(`INSERT OR IGNORE INTO projects
		(id, name, description, budget, total_spent, created_by, created_at, updated_at)
		VALUES ('seed-project-1', 'Riverside Apartments', 'Phase one site works', '500000', '0', 'seed-admin-1', ?, ?)`,
		now, now)
	if err != nil {
		return err
	}

	members := []struct {
		userID, name, role string
		canDeleteExpenses  bool
	}{
		{"seed-admin-1", "Amina", "admin", false},
		{"seed-director-1", "Joseph", "director", true},
		{"seed-labour-1", "Kasim", "labour", false},
	}
	for _, m := range members {
		_, err := db.Exec(`INSERT OR IGNORE INTO project_members
			(project_id, user_id, name, role, can_delete_expenses, added_at)
			VALUES ('seed-project-1', ?, ?, ?, ?, ?)`,
			m.userID, m.name, m.role, m.canDeleteExpenses, now)
		if err != nil {
			return err
		}
	}

	return nil
}
