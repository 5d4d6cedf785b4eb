package services

import (
	"os"

	"github.com/joho/godotenv"

	"buildledger/backend/logging"
)

// LoadEnvVariables loads a local .env file when present. Production
// deployments configure through real environment variables.
func LoadEnvVariables() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		logging.Logger.Warnf("Failed to load .env file: %v", err)
	}
}
