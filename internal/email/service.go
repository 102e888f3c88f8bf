// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email with a plain-text fallback part.
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-hitched"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// InviteData holds data for collaborator invite emails.
type InviteData struct {
	AppName      string
	InviteeName  string
	InviterName  string
	ProjectTitle string
	Role         string
}

// RSVPData holds data for RSVP notification emails.
type RSVPData struct {
	AppName      string
	PlannerName  string
	GuestName    string
	Attending    bool
	ProjectTitle string
}

// SendCollaboratorInvite notifies a user they were added to a wedding project.
func (s *Service) SendCollaboratorInvite(to, inviteeName, inviterName, projectTitle, role string) error {
	data := InviteData{
		AppName:      "Hitched",
		InviteeName:  inviteeName,
		InviterName:  inviterName,
		ProjectTitle: projectTitle,
		Role:         role,
	}

	subject := fmt.Sprintf("You've been invited to plan %s", projectTitle)
	html, err := renderTemplate(inviteEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render invite template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendRSVPNotification notifies the planner that a guest submitted an RSVP.
func (s *Service) SendRSVPNotification(to, plannerName, guestName, projectTitle string, attending bool) error {
	data := RSVPData{
		AppName:      "Hitched",
		PlannerName:  plannerName,
		GuestName:    guestName,
		Attending:    attending,
		ProjectTitle: projectTitle,
	}

	subject := fmt.Sprintf("New RSVP for %s", projectTitle)
	html, err := renderTemplate(rsvpEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render rsvp template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const inviteEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You've been invited to {{.ProjectTitle}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #b76e79; padding-bottom: 10px; margin-bottom: 20px; }
        .role { display: inline-block; padding: 4px 10px; background: #f7e9eb; color: #b76e79; border-radius: 4px; font-weight: 600; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.InviteeName}},</h2>

    <p>{{.InviterName}} has invited you to collaborate on <strong>{{.ProjectTitle}}</strong> as a <span class="role">{{.Role}}</span>.</p>

    <p>Sign in with this email address to see the project on your dashboard.</p>

    <div class="footer">
        <p>If you weren't expecting this invite, you can safely ignore this email.</p>
    </div>
</body>
</html>`

const rsvpEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New RSVP for {{.ProjectTitle}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #b76e79; padding-bottom: 10px; margin-bottom: 20px; }
        .yes { color: #2e7d32; font-weight: 600; }
        .no { color: #c62828; font-weight: 600; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hi {{.PlannerName}},</h2>

    <p><strong>{{.GuestName}}</strong> just responded to your invitation for <strong>{{.ProjectTitle}}</strong>:</p>

    {{if .Attending}}
    <p class="yes">Attending</p>
    {{else}}
    <p class="no">Not attending</p>
    {{end}}

    <div class="footer">
        <p>You can see the full guest list on your wedding dashboard.</p>
    </div>
</body>
</html>`
