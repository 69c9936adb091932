package services

import (
	"context"
)

// Provider represents an email delivery provider
type Provider interface {
	Send(ctx context.Context, message *Message) (*SendResult, error)
	GetName() string
}

// Message represents an email to be sent
type Message struct {
	To          string
	Subject     string
	Body        string
	BodyHTML    string
	From        string
	FromName    string
	ReplyTo     string
	Attachments []Attachment
	Headers     map[string]string
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// SendResult represents the result of a send operation
type SendResult struct {
	ProviderID   string
	ProviderName string
	Success      bool
	Error        error
	ProviderData map[string]interface{}
}

// ProviderConfig represents provider configuration
type ProviderConfig struct {
	// AWS credentials (shared for SES and S3)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// AWS SES (primary email)
	SESFrom     string
	SESFromName string

	// SendGrid (fallback email)
	SendGridAPIKey string
	SendGridFrom   string
	SendGridName   string

	// Generic SMTP (legacy)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
}
