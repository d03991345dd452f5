// Package email sends lead notifications to the team inbox over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// LeadNotification is the data rendered into the notification mail.
type LeadNotification struct {
	Name           string
	Email          string
	Phone          string
	ContactMethod  string
	Intent         string
	Urgency        string
	Summary        string
	ConversationID string
}

// SMTPNotifier delivers lead notifications via a direct SMTP connection.
type SMTPNotifier struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	toEmail   string
}

// NewSMTPNotifier creates a notifier with the given SMTP credentials.
func NewSMTPNotifier(host string, port int, username, password, fromEmail, toEmail string) *SMTPNotifier {
	return &SMTPNotifier{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// SendLeadNotification mails a captured-lead summary to the team.
func (s *SMTPNotifier) SendLeadNotification(ctx context.Context, n LeadNotification) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(fmt.Sprintf("New lead: %s (%s)", n.Name, n.Intent))
	msg.SetBodyString(gomail.TypeTextHTML, renderLeadNotification(n))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func renderLeadNotification(n LeadNotification) string {
	row := func(label, value string) string {
		if value == "" {
			value = "&mdash;"
		} else {
			value = html.EscapeString(value)
		}
		return fmt.Sprintf("<tr><td><strong>%s</strong></td><td>%s</td></tr>", label, value)
	}
	return "<h3>New lead captured</h3><table>" +
		row("Name", n.Name) +
		row("Email", n.Email) +
		row("Phone", n.Phone) +
		row("Preferred contact", n.ContactMethod) +
		row("Intent", n.Intent) +
		row("Urgency", n.Urgency) +
		row("Summary", n.Summary) +
		row("Conversation", n.ConversationID) +
		"</table>"
}
