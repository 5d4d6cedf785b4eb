package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"buildledger/backend/database"
	"buildledger/backend/handlers"
	"buildledger/backend/logging"
	"buildledger/backend/middleware"
	"buildledger/backend/migrations"
	"buildledger/backend/security"
	"buildledger/backend/services"
	"buildledger/backend/storage"
)

func main() {
	noExit := flag.Bool("no-exit", false, "Don't exit after database reset")
	resetDB := flag.Bool("reset-db", false, "Force reset the database")
	flag.Parse()

	logging.InitLogger()
	log := logging.Logger

	services.LoadEnvVariables()

	isResetDB := os.Getenv("RESET_DB") == "true" || *resetDB
	isDevelopment := os.Getenv("APP_ENV") != "production" &&
		os.Getenv("ENVIRONMENT") != "production" &&
		os.Getenv("ENV") != "production"

	if isResetDB {
		log.Info("Running in database reset mode")
	}
	if isDevelopment {
		log.Info("Running in development environment")
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey == "" {
		log.Warn("ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = "default-key-for-development-only"
	}
	security.InitializeEncryption(encryptionKey)

	if err := database.InitDB(); err != nil {
		log.Fatal(err)
	}

	log.Info("Running migrations...")
	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Warnf("Failed to run migrations: %v", err)
	}

	// In reset mode, exit after database setup unless --no-exit is given
	if isResetDB && !*noExit {
		log.Info("Database reset completed successfully. Exiting.")
		return
	}

	log.Info("Initializing Firebase Admin SDK...")
	app, err := middleware.InitializeFirebase()
	if err != nil {
		log.Warnf("Failed to initialize Firebase: %v", err)
		log.Warn("Auth token verification will be disabled!")
	}
	if err := services.InitNotifier(app); err != nil {
		log.Warnf("Failed to initialize notifier: %v", err)
	}

	if err := storage.InitStorage(); err != nil {
		log.Warnf("Failed to initialize receipt storage: %v", err)
	}

	services.StartScheduler()

	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)

	// Register routes both bare and under /api so older app builds keep
	// working
	registerRoutes(r)
	apiRouter := r.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Infof("Starting server on port %s...", port)
	log.Fatal(srv.ListenAndServe())
}

// registerRoutes sets up all API routes
func registerRoutes(r *mux.Router) {
	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(middleware.AuthMiddleware)

	// Project routes
	protectedRouter.HandleFunc("/projects", handlers.GetProjects).Methods("GET")
	protectedRouter.HandleFunc("/projects", handlers.CreateProject).Methods("POST")
	protectedRouter.HandleFunc("/projects/{id}", handlers.GetProject).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}", handlers.UpdateProject).Methods("PUT")
	protectedRouter.HandleFunc("/projects/{id}/recompute", handlers.RecomputeProject).Methods("POST")
	protectedRouter.HandleFunc("/projects/{id}/members", handlers.GetProjectMembers).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}/members", handlers.AddProjectMember).Methods("POST")
	protectedRouter.HandleFunc("/projects/{id}/members/{userId}", handlers.RemoveProjectMember).Methods("DELETE")

	// Expense routes
	protectedRouter.HandleFunc("/projects/{id}/expenses", handlers.GetProjectExpenses).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}/expenses", handlers.AddExpense).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}", handlers.GetExpense).Methods("GET")
	protectedRouter.HandleFunc("/expenses/{id}", handlers.UpdateExpense).Methods("PUT")
	protectedRouter.HandleFunc("/expenses/{id}", handlers.DeleteExpense).Methods("DELETE")
	protectedRouter.HandleFunc("/expenses/{id}/approve", handlers.ApproveExpense).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}/reject", handlers.RejectExpense).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}/payments", handlers.RecordExpensePayment).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}/restore", handlers.RestoreExpense).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}/receipt", handlers.UploadReceipt).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}/receipt", handlers.GetReceiptURL).Methods("GET")

	// Report routes
	protectedRouter.HandleFunc("/projects/{id}/summary", handlers.GetProjectSummary).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}/categories", handlers.GetCategoryTotals).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}/export", handlers.ExportProjectExpenses).Methods("GET")

	// Invitation routes
	protectedRouter.HandleFunc("/invitations", handlers.CreateInvitation).Methods("POST")
	protectedRouter.HandleFunc("/invitations/accept", handlers.AcceptInvitation).Methods("POST")
	protectedRouter.HandleFunc("/invitations/{id}/cancel", handlers.CancelInvitation).Methods("POST")
	protectedRouter.HandleFunc("/projects/{id}/invitations", handlers.GetProjectInvitations).Methods("GET")

	// User routes
	protectedRouter.HandleFunc("/users/sync", handlers.SyncUser).Methods("POST")
	protectedRouter.HandleFunc("/users/device-token", handlers.RegisterDeviceToken).Methods("PUT")
	protectedRouter.HandleFunc("/users/{id}", handlers.GetUser).Methods("GET")
}
