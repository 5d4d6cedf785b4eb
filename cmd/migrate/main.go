package main

import (
	"buildledger/backend/database"
	"buildledger/backend/logging"
	"buildledger/backend/migrations"
)

// Standalone migration runner for deployments that migrate before rollout.
func main() {
	logging.InitLogger()
	log := logging.Logger

	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("Migrations completed successfully")
}
