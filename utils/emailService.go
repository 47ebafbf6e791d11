package utils

import (
	"context"
	"fmt"
	"html"

	"certvault/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// UserLookup resolves the recipient of a notification.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// EmailNotifier mails terminal verification results to users with an email
// on their profile.
type EmailNotifier struct {
	from   *mail.Email
	users  UserLookup
	logger *zap.Logger
	send   func(ctx context.Context, msg *mail.SGMailV3) error
}

func NewEmailNotifier(apiKey, sender string, users UserLookup, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.L()
	}
	client := sendgrid.NewSendClient(apiKey)
	return &EmailNotifier{
		from:   mail.NewEmail("CertVault", sender),
		users:  users,
		logger: logger,
		send: func(ctx context.Context, msg *mail.SGMailV3) error {
			resp, err := client.SendWithContext(ctx, msg)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
			}
			return nil
		},
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, n models.Notification) {
	user, err := e.users.GetUser(ctx, n.UserID)
	if err != nil {
		e.logger.Warn("Email notification skipped", zap.String("user_id", n.UserID), zap.Error(err))
		return
	}
	if user.Email == "" {
		return
	}

	msg := mail.NewSingleEmail(
		e.from,
		n.Title,
		mail.NewEmail(user.FullName, user.Email),
		n.Message,
		getEmailTemplate(n.Title, certificateBody(user.FullName, n)),
	)

	e.logger.Debug("Sending email", zap.String("to", user.Email), zap.String("subject", n.Title))
	if err := e.send(ctx, msg); err != nil {
		e.logger.Error("Error sending email", zap.String("to", user.Email), zap.Error(err))
		return
	}
	e.logger.Info("Email sent", zap.String("to", user.Email), zap.String("subject", n.Title))
}

func certificateBody(name string, n models.Notification) string {
	color := "#28A745" // success
	if n.Variant == models.VariantDestructive {
		color = "#DC3545" // error
	}
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s.</p>
		<div class="info-box" style="border-left-color: %s;">
			<strong>Certificate:</strong> %s
		</div>
		<p>Open your dashboard to see the verification history.</p>
	`, html.EscapeString(name), html.EscapeString(n.Message), color, html.EscapeString(n.CertificateID))
}

// HTML wrapper shared by all outgoing mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #14F195; padding: 30px; text-align: center; }
			.header h1 { color: #000000; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.content h2 { margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #F3F4F6; padding: 15px; border-radius: 4px; border-left: 4px solid #9945FF; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>CERTVAULT</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				Certificates verified and minted on Solana.
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent)
}
