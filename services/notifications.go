package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sony/gobreaker"

	"buildledger/backend/ledger"
	"buildledger/backend/logging"
)

// Notifier dispatches a push message to one user. Implementations decide
// transport; callers fire and forget.
type Notifier interface {
	Notify(ctx context.Context, recipientUserID, eventKind string, payload map[string]string) error
}

// ActiveNotifier is set during startup. It defaults to a log-only
// implementation so notification call sites work in development and tests.
var ActiveNotifier Notifier = &logNotifier{}

const (
	EventExpenseDeleted  = "expense_deleted"
	EventExpenseApproved = "expense_approved"
	EventExpenseRejected = "expense_rejected"
)

// fcmNotifier sends through Firebase Cloud Messaging. A circuit breaker
// stops the service from hammering FCM through an outage; notifications are
// best effort and a dropped send is only logged.
type fcmNotifier struct {
	client  *messaging.Client
	breaker *gobreaker.CircuitBreaker
}

// InitNotifier builds the FCM notifier from the shared Firebase app. A nil
// app (development mode) keeps the log-only notifier.
func InitNotifier(app *firebase.App) error {
	if app == nil {
		logging.Logger.Info("No Firebase app, push notifications will be logged only")
		return nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return fmt.Errorf("error getting FCM client: %w", err)
	}

	ActiveNotifier = &fcmNotifier{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "fcm",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	logging.Logger.Info("FCM notifier initialized")
	return nil
}

func (n *fcmNotifier) Notify(ctx context.Context, recipientUserID, eventKind string, payload map[string]string) error {
	token, err := GetDeviceToken(recipientUserID)
	if err != nil {
		if err == ErrNotFound {
			logging.Logger.Debugf("User %s has no registered device, dropping %s notification", recipientUserID, eventKind)
			return nil
		}
		return err
	}

	data := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	data["eventKind"] = eventKind

	_, err = n.breaker.Execute(func() (interface{}, error) {
		return n.client.Send(ctx, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: notificationTitle(eventKind),
				Body:  payload["body"],
			},
			Data: data,
		})
	})
	if err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}
	return nil
}

func notificationTitle(eventKind string) string {
	switch eventKind {
	case EventExpenseDeleted:
		return "Expense deleted"
	case EventExpenseApproved:
		return "Expense approved"
	case EventExpenseRejected:
		return "Expense rejected"
	default:
		return "BuildLedger"
	}
}

// logNotifier is the development and test stand-in.
type logNotifier struct{}

func (n *logNotifier) Notify(_ context.Context, recipientUserID, eventKind string, payload map[string]string) error {
	logging.Logger.WithFields(map[string]interface{}{
		"recipient": recipientUserID,
		"eventKind": eventKind,
		"payload":   payload,
	}).Info("notification (log only)")
	return nil
}

// NotifyExpenseDeleted dispatches the delegated-deletion notice the ledger
// produced to the project's admin.
func NotifyExpenseDeleted(notice ledger.AdminNotice) {
	adminID, err := ProjectAdminID(notice.ProjectID)
	if err != nil {
		logging.Logger.Warnf("Cannot notify admin of project %s: %v", notice.ProjectID, err)
		return
	}

	payload := map[string]string{
		"body":         fmt.Sprintf("%s deleted expense %q", notice.DeleterName, notice.ExpenseTitle),
		"deleterName":  notice.DeleterName,
		"expenseTitle": notice.ExpenseTitle,
		"projectId":    notice.ProjectID,
	}
	if err := ActiveNotifier.Notify(context.Background(), adminID, EventExpenseDeleted, payload); err != nil {
		logging.Logger.Warnf("Failed to notify admin %s: %v", adminID, err)
	}
}
