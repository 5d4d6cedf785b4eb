package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"buildledger/backend/logging"
)

// Context keys for values extracted from the verified token
type contextKey string

const UserIDKey contextKey = "user_id"
const UserNameKey contextKey = "user_name"

var firebaseAuth *auth.Client

// InitializeFirebase initializes the Firebase Admin SDK and returns the app
// so callers can build further clients (messaging) from it. With no
// credentials configured the app runs in development mode: token checks are
// skipped and a nil app is returned.
func InitializeFirebase() (*firebase.App, error) {
	projectID := os.Getenv("FIREBASE_PROJECT_ID")

	var opts []option.ClientOption
	if credsJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); credsJSON != "" {
		logging.Logger.Info("Using JSON Firebase credentials from environment")
		opts = append(opts, option.WithCredentialsJSON([]byte(credsJSON)))
	} else if credsBase64 := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); credsBase64 != "" {
		logging.Logger.Info("Using base64-encoded Firebase credentials from environment")
		credBytes, err := base64.StdEncoding.DecodeString(credsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 Firebase credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(credBytes))
	} else if credsFile := os.Getenv("FIREBASE_SERVICE_ACCOUNT_FILE"); credsFile != "" {
		logging.Logger.Infof("Using Firebase credentials file %s", credsFile)
		opts = append(opts, option.WithCredentialsFile(credsFile))
	} else {
		logging.Logger.Warn("No Firebase credentials found, running in development mode with auth checks disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	firebaseAuth, err = app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logging.Logger.Info("Firebase Admin SDK initialized")
	return app, nil
}

// AuthMiddleware verifies Firebase ID tokens from the Authorization header
// and puts the caller's identity on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == "OPTIONS" {
			next.ServeHTTP(w, r)
			return
		}

		// Dev mode without Firebase: act as the seeded admin
		if firebaseAuth == nil {
			ctx := context.WithValue(r.Context(), UserIDKey, "seed-admin-1")
			ctx = context.WithValue(ctx, UserNameKey, "Amina")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		idToken := extractToken(r.Header.Get("Authorization"))
		if idToken == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := verifyToken(r.Context(), idToken)
		if err != nil {
			logging.Logger.Warnf("Error verifying token: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, token.UID)
		if name, ok := token.Claims["name"].(string); ok {
			ctx = context.WithValue(ctx, UserNameKey, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user id, or "" when the
// request never passed through AuthMiddleware.
func GetUserIDFromContext(r *http.Request) string {
	if userID, ok := r.Context().Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetUserNameFromContext returns the authenticated user's display name.
func GetUserNameFromContext(r *http.Request) string {
	if name, ok := r.Context().Value(UserNameKey).(string); ok {
		return name
	}
	return ""
}

// extractToken gets the bearer token from the Authorization header.
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func verifyToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if firebaseAuth == nil {
		return nil, errors.New("firebase auth client not initialized")
	}

	token, err := firebaseAuth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("error verifying ID token: %w", err)
	}

	return token, nil
}
