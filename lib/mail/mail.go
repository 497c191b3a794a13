// Package mail sends transactional email through SendGrid. When no API key
// is configured the client is disabled and callers fall back to returning
// reset tokens directly, so local development needs no email setup.
package mail

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Client sends MoviePick transactional email.
type Client struct {
	apiKey  string
	from    string
	baseURL string
	logger  *slog.Logger
}

// New returns a mail client. An empty apiKey yields a disabled client.
func New(apiKey, from, baseURL string, logger *slog.Logger) *Client {
	return &Client{apiKey: apiKey, from: from, baseURL: baseURL, logger: logger}
}

// Enabled reports whether the client can actually send email.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// SendPasswordReset emails a password reset link containing the token.
func (c *Client) SendPasswordReset(to, token, username string) error {
	if !c.Enabled() {
		return fmt.Errorf("sendgrid is not configured")
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", c.baseURL, token)

	plain := fmt.Sprintf(`Hello %s,

You requested a password reset for your MoviePick account.

Please use the following link to reset your password:
%s

This link will expire in 24 hours.

If you did not request this reset, please ignore this email.

Regards,
The MoviePick Team`, username, resetURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #6366f1;">MoviePick Password Reset</h2>
<p>Hello %s,</p>
<p>You requested a password reset for your MoviePick account.</p>
<p>Please click the button below to reset your password:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="%s" style="background-color: #6366f1; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
</div>
<p>This link will expire in 24 hours.</p>
<p>If you did not request this reset, please ignore this email.</p>
<p>Regards,<br>The MoviePick Team</p>
</div>`, username, resetURL)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("MoviePick", c.from),
		"Password Reset - MoviePick",
		sgmail.NewEmail(username, to),
		plain,
		html,
	)

	resp, err := sendgrid.NewSendClient(c.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected password reset email: status %d", resp.StatusCode)
	}

	c.logger.Info("Sent password reset email", slog.String("to", to))
	return nil
}
