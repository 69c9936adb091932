package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESProvider implements email sending via AWS SES
type SESProvider struct {
	client   *ses.Client
	from     string
	fromName string
	region   string
}

// NewSESProvider creates a new AWS SES email provider
func NewSESProvider(cfg *ProviderConfig) (*SESProvider, error) {
	var awsOpts []func(*config.LoadOptions) error

	if cfg.AWSRegion != "" {
		awsOpts = append(awsOpts, config.WithRegion(cfg.AWSRegion))
	}

	// Explicit credentials win; otherwise the default chain applies
	// (environment, shared config, instance role).
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsOpts = append(awsOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESProvider{
		client:   ses.NewFromConfig(awsCfg),
		from:     cfg.SESFrom,
		fromName: cfg.SESFromName,
		region:   cfg.AWSRegion,
	}, nil
}

// Send sends an email via AWS SES
func (p *SESProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	source := p.from
	if p.fromName != "" {
		source = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}
	if message.From != "" {
		source = message.From
		if message.FromName != "" {
			source = fmt.Sprintf("%s <%s>", message.FromName, message.From)
		}
	}

	destination := &types.Destination{
		ToAddresses: []string{message.To},
	}

	// Attachments require the raw MIME API
	if len(message.Attachments) > 0 {
		return p.sendRawEmail(ctx, source, destination, message)
	}

	body := &types.Body{}
	if message.BodyHTML != "" {
		body.Html = &types.Content{
			Charset: aws.String("UTF-8"),
			Data:    aws.String(message.BodyHTML),
		}
	}
	if message.Body != "" {
		body.Text = &types.Content{
			Charset: aws.String("UTF-8"),
			Data:    aws.String(message.Body),
		}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: destination,
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(message.Subject),
			},
			Body: body,
		},
	}

	if message.ReplyTo != "" {
		input.ReplyToAddresses = []string{message.ReplyTo}
	}

	result, err := p.client.SendEmail(ctx, input)
	if err != nil {
		sendErr := fmt.Errorf("SES send failed: %w", err)
		return &SendResult{ProviderName: "AWS SES", Success: false, Error: sendErr}, err
	}

	return &SendResult{
		ProviderID:   aws.ToString(result.MessageId),
		ProviderName: "AWS SES",
		Success:      true,
		ProviderData: map[string]interface{}{
			"message_id": aws.ToString(result.MessageId),
			"to":         message.To,
			"subject":    message.Subject,
			"region":     p.region,
		},
	}, nil
}

// sendRawEmail sends email with attachments using raw MIME format
func (p *SESProvider) sendRawEmail(ctx context.Context, source string, destination *types.Destination, message *Message) (*SendResult, error) {
	boundary := "----=_Part_0_1234567890"

	var raw strings.Builder
	raw.WriteString(fmt.Sprintf("From: %s\r\n", source))
	raw.WriteString(fmt.Sprintf("To: %s\r\n", message.To))
	raw.WriteString(fmt.Sprintf("Subject: %s\r\n", message.Subject))
	if message.ReplyTo != "" {
		raw.WriteString(fmt.Sprintf("Reply-To: %s\r\n", message.ReplyTo))
	}
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))

	raw.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	if message.BodyHTML != "" {
		raw.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		raw.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
		raw.WriteString(message.BodyHTML + "\r\n")
	} else {
		raw.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		raw.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
		raw.WriteString(message.Body + "\r\n")
	}

	for _, att := range message.Attachments {
		raw.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		raw.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename))
		raw.WriteString("Content-Transfer-Encoding: base64\r\n")
		raw.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))
		raw.WriteString(base64.StdEncoding.EncodeToString(att.Content) + "\r\n")
	}

	raw.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	input := &ses.SendRawEmailInput{
		Source:       aws.String(source),
		Destinations: destination.ToAddresses,
		RawMessage: &types.RawMessage{
			Data: []byte(raw.String()),
		},
	}

	result, err := p.client.SendRawEmail(ctx, input)
	if err != nil {
		sendErr := fmt.Errorf("SES raw send failed: %w", err)
		return &SendResult{ProviderName: "AWS SES", Success: false, Error: sendErr}, err
	}

	return &SendResult{
		ProviderID:   aws.ToString(result.MessageId),
		ProviderName: "AWS SES",
		Success:      true,
		ProviderData: map[string]interface{}{
			"message_id":  aws.ToString(result.MessageId),
			"to":          message.To,
			"subject":     message.Subject,
			"region":      p.region,
			"attachments": len(message.Attachments),
		},
	}, nil
}

// GetName returns the provider name
func (p *SESProvider) GetName() string {
	return "AWS SES"
}
