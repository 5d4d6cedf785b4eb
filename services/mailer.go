package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"buildledger/backend/logging"
)

// SendInvitationEmail mails the membership token to the invitee. With no
// SMTP configured (development) the mail is logged and skipped.
func SendInvitationEmail(to, projectName, token, invitedByName string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logging.Logger.Infof("SMTP not configured, skipping invitation mail to %s (token %s)", to, token)
		return nil
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	acceptURL := os.Getenv("INVITE_BASE_URL")
	if acceptURL == "" {
		acceptURL = "https://buildledger.fly.dev/invitations/accept"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("You have been invited to %s", projectName))
	m.SetBody("text/html", fmt.Sprintf(
		"<p>%s invited you to join the project <b>%s</b> on BuildLedger.</p>"+
			"<p><a href=\"%s?token=%s\">Accept the invitation</a></p>"+
			"<p>The invitation expires in 7 days.</p>",
		invitedByName, projectName, acceptURL, token))

	d := gomail.NewDialer(host, port, user, password)
	return d.DialAndSend(m)
}
