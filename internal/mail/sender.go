// Package mail sends the transactional notification mails for new leads over
// SMTP. Delivery is synchronous; callers decide whether failures matter (the
// lead pipeline logs and continues).
package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/jalud/go-leads-backend/internal/domain"
)

// Sender delivers lead notifications through a single SMTP account.
type Sender struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	AdminEmail string
}

// NewSender builds a Sender for the given SMTP account.
func NewSender(host string, port int, user, password, from, adminEmail string) *Sender {
	return &Sender{
		Host:       host,
		Port:       port,
		User:       user,
		Password:   password,
		From:       from,
		AdminEmail: adminEmail,
	}
}

// Configured reports whether the transport has credentials and a sender
// address. An unconfigured Sender silently satisfies the Notifier contract
// without ever dialing.
func (s *Sender) Configured() bool {
	return s != nil && s.Host != "" && s.User != "" && s.Password != "" && s.From != ""
}

// SendLeadConfirmation mails the submitting customer their confirmation.
func (s *Sender) SendLeadConfirmation(lead *domain.Lead) error {
	body, err := renderTemplate(customerTemplate, lead)
	if err != nil {
		return err
	}
	return s.send(lead.Email, "Bestätigung Ihrer Anfrage - JALUD Premium Autopflege", body)
}

// SendLeadAlert mails the site owner the new-lead notification.
func (s *Sender) SendLeadAlert(lead *domain.Lead) error {
	if s.AdminEmail == "" {
		return fmt.Errorf("admin recipient not configured")
	}
	body, err := renderTemplate(adminTemplate, lead)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("🔔 Neue Lead-Anfrage von %s %s", lead.FirstName, lead.LastName)
	return s.send(s.AdminEmail, subject, body)
}

func (s *Sender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	// Port 465 is implicit TLS; everything else negotiates STARTTLS.
	d.SSL = s.Port == 465

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func renderTemplate(t *template.Template, lead *domain.Lead) (string, error) {
	data := leadMailData{
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		PackageName: PackageDisplayName(lead.Package),
		Message:     lead.Message,
		CreatedAt:   lead.CreatedAt.Format("02.01.2006 15:04"),
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}
