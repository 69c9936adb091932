package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subjects for downstream consumers (dashboards, analytics)
const (
	SubjectOrderCreated    = "bakery.order.created"
	SubjectInquiryReceived = "bakery.inquiry.received"
)

// OrderCreatedEvent is published after an order is persisted
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber int       `json:"orderNumber"`
	OrderType   string    `json:"orderType"`
	Email       string    `json:"email"`
	EmailSent   bool      `json:"emailSent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InquiryReceivedEvent is published for contact-path submissions
type InquiryReceivedEvent struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Publisher emits domain events. All publishes are best-effort: the
// intake pipeline never fails because the broker is down.
type Publisher struct {
	client *Client
	logger *logrus.Entry
}

// NewPublisher creates a new event publisher. A nil client produces a
// no-op publisher so callers need no broker in development.
func NewPublisher(client *Client, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{
		client: client,
		logger: logger.WithField("component", "events"),
	}
}

// PublishOrderCreated emits an order-created event
func (p *Publisher) PublishOrderCreated(event OrderCreatedEvent) {
	p.publish(SubjectOrderCreated, event)
}

// PublishInquiryReceived emits an inquiry-received event
func (p *Publisher) PublishInquiryReceived(event InquiryReceivedEvent) {
	p.publish(SubjectInquiryReceived, event)
}

func (p *Publisher) publish(subject string, event interface{}) {
	if p.client == nil || !p.client.IsConnected() {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to marshal event")
		return
	}

	if err := p.client.Connection().Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}
