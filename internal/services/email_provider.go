package services

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SMTPProvider implements email sending via SMTP
type SMTPProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPProvider creates a new SMTP email provider
func NewSMTPProvider(config *ProviderConfig) *SMTPProvider {
	return &SMTPProvider{
		host:     config.SMTPHost,
		port:     fmt.Sprintf("%d", config.SMTPPort),
		username: config.SMTPUsername,
		password: config.SMTPPassword,
		from:     config.SMTPFrom,
		fromName: config.SMTPFromName,
	}
}

// Send sends an email via SMTP
func (p *SMTPProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	from := p.from
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}
	if message.From != "" {
		from = message.From
		if message.FromName != "" {
			from = fmt.Sprintf("%s <%s>", message.FromName, message.From)
		}
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = message.To
	headers["Subject"] = message.Subject
	headers["MIME-Version"] = "1.0"
	if message.ReplyTo != "" {
		headers["Reply-To"] = message.ReplyTo
	}
	for key, value := range message.Headers {
		headers[key] = value
	}

	var bodyBuilder strings.Builder
	if len(message.Attachments) > 0 {
		boundary := "----=_Part_0_bakehouse"
		headers["Content-Type"] = fmt.Sprintf("multipart/mixed; boundary=\"%s\"", boundary)
		bodyBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		if message.BodyHTML != "" {
			bodyBuilder.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
			bodyBuilder.WriteString(message.BodyHTML)
		} else {
			bodyBuilder.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
			bodyBuilder.WriteString(message.Body)
		}
		bodyBuilder.WriteString("\r\n")
		for _, att := range message.Attachments {
			bodyBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
			bodyBuilder.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename))
			bodyBuilder.WriteString("Content-Transfer-Encoding: base64\r\n")
			bodyBuilder.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))
			bodyBuilder.WriteString(base64.StdEncoding.EncodeToString(att.Content))
			bodyBuilder.WriteString("\r\n")
		}
		bodyBuilder.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	} else if message.BodyHTML != "" {
		headers["Content-Type"] = "text/html; charset=utf-8"
		bodyBuilder.WriteString(message.BodyHTML)
	} else {
		headers["Content-Type"] = "text/plain; charset=utf-8"
		bodyBuilder.WriteString(message.Body)
	}

	var emailBuilder strings.Builder
	for k, v := range headers {
		emailBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	emailBuilder.WriteString("\r\n")
	emailBuilder.WriteString(bodyBuilder.String())

	recipients := []string{message.To}
	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := net.JoinHostPort(p.host, p.port)

	tlsConfig := &tls.Config{
		ServerName: p.host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS/plain path
		if err := smtp.SendMail(addr, auth, p.from, recipients, []byte(emailBuilder.String())); err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
	} else {
		defer conn.Close()

		client, err := smtp.NewClient(conn, p.host)
		if err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
		if err = client.Mail(p.from); err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
		for _, recipient := range recipients {
			if err = client.Rcpt(recipient); err != nil {
				return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
			}
		}
		w, err := client.Data()
		if err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
		if _, err = w.Write([]byte(emailBuilder.String())); err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
		if err = w.Close(); err != nil {
			return &SendResult{ProviderName: "SMTP", Success: false, Error: err}, err
		}
	}

	return &SendResult{
		ProviderName: "SMTP",
		Success:      true,
		ProviderData: map[string]interface{}{
			"to":      message.To,
			"subject": message.Subject,
		},
	}, nil
}

// GetName returns the provider name
func (p *SMTPProvider) GetName() string {
	return "SMTP"
}

// SendGridProvider implements email sending via SendGrid
type SendGridProvider struct {
	apiKey   string
	from     string
	fromName string
	client   *sendgrid.Client
}

// NewSendGridProvider creates a new SendGrid email provider
func NewSendGridProvider(config *ProviderConfig) *SendGridProvider {
	fromName := config.SendGridName
	if fromName == "" {
		fromName = "The Bakehouse"
	}
	return &SendGridProvider{
		apiKey:   config.SendGridAPIKey,
		from:     config.SendGridFrom,
		fromName: fromName,
		client:   sendgrid.NewSendClient(config.SendGridAPIKey),
	}
}

// Send sends an email via SendGrid
func (p *SendGridProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	from := mail.NewEmail(p.fromName, p.from)
	if message.From != "" {
		fromName := message.FromName
		if fromName == "" {
			fromName = message.From
		}
		from = mail.NewEmail(fromName, message.From)
	}

	to := mail.NewEmail("", message.To)

	m := mail.NewSingleEmail(from, message.Subject, to, message.Body, message.BodyHTML)

	if message.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", message.ReplyTo))
	}
	if len(message.Headers) > 0 {
		m.Headers = message.Headers
	}

	for _, att := range message.Attachments {
		a := mail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetType(att.ContentType)
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		m.AddAttachment(a)
	}

	// Disable link rewriting on transactional emails
	trackingSettings := mail.NewTrackingSettings()
	clickTracking := mail.NewClickTrackingSetting()
	clickTracking.SetEnable(false)
	clickTracking.SetEnableText(false)
	trackingSettings.SetClickTracking(clickTracking)
	openTracking := mail.NewOpenTrackingSetting()
	openTracking.SetEnable(false)
	trackingSettings.SetOpenTracking(openTracking)
	m.SetTrackingSettings(trackingSettings)

	response, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return &SendResult{ProviderName: "SendGrid", Success: false, Error: err}, err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var messageID string
		if ids, ok := response.Headers["X-Message-Id"]; ok && len(ids) > 0 {
			messageID = ids[0]
		}
		return &SendResult{
			ProviderID:   messageID,
			ProviderName: "SendGrid",
			Success:      true,
			ProviderData: map[string]interface{}{
				"status_code": response.StatusCode,
				"to":          message.To,
				"subject":     message.Subject,
			},
		}, nil
	}

	sendErr := fmt.Errorf("SendGrid API error: %d - %s", response.StatusCode, response.Body)
	return &SendResult{
		ProviderName: "SendGrid",
		Success:      false,
		Error:        sendErr,
	}, sendErr
}

// GetName returns the provider name
func (p *SendGridProvider) GetName() string {
	return "SendGrid"
}
