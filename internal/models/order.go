package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus represents the order lifecycle state. Intake only ever
// creates orders as NEW; nothing in this service transitions them further.
type OrderStatus string

const (
	OrderStatusNew OrderStatus = "new"
)

// PaymentStatus represents the payment state
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
)

// OrderType distinguishes what kind of inquiry produced the order
type OrderType string

const (
	OrderTypeCake   OrderType = "cake"
	OrderTypeHamper OrderType = "hamper"
	OrderTypeCustom OrderType = "custom"
)

// Order represents a persisted order inquiry. Customer fields are a
// snapshot copied at creation time; there is no customer entity to
// reference. Each order carries exactly one line item.
type Order struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber int         `json:"orderNumber" gorm:"uniqueIndex;not null"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	OrderType   OrderType   `json:"orderType" gorm:"type:varchar(20);default:'custom'"`

	// Customer snapshot
	CustomerName  string `json:"customerName" gorm:"type:varchar(255);not null"`
	CustomerEmail string `json:"customerEmail" gorm:"type:varchar(255);not null;index"`
	CustomerPhone string `json:"customerPhone" gorm:"type:varchar(50);not null"`
	AddressLine   string `json:"addressLine" gorm:"type:varchar(500)"`
	City          string `json:"city" gorm:"type:varchar(100)"`
	Postcode      string `json:"postcode" gorm:"type:varchar(20)"`

	// Line item
	ProductID    string  `json:"productId" gorm:"type:varchar(255)"`
	ProductName  string  `json:"productName" gorm:"type:varchar(255)"`
	ProductType  string  `json:"productType" gorm:"type:varchar(100)"`
	Quantity     int     `json:"quantity" gorm:"default:1"`
	UnitPrice    float64 `json:"unitPrice"`
	TotalPrice   float64 `json:"totalPrice"`
	Size         string  `json:"size" gorm:"type:varchar(100)"`
	Flavor       string  `json:"flavor" gorm:"type:varchar(100)"`
	Instructions string  `json:"instructions" gorm:"type:text"`

	// Delivery
	DeliveryMethod  string `json:"deliveryMethod" gorm:"type:varchar(50)"`
	DeliveryAddress string `json:"deliveryAddress" gorm:"type:varchar(500)"`
	DeliveryNotes   string `json:"deliveryNotes" gorm:"type:text"`

	// Payment
	PaymentMethod string        `json:"paymentMethod" gorm:"type:varchar(50)"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending'"`

	// Message thread, seeded with the customer's initial message
	Messages datatypes.JSON `json:"messages" gorm:"type:jsonb"`

	// Metadata
	DateNeeded   string `json:"dateNeeded" gorm:"type:varchar(50)"`
	GiftNote     string `json:"giftNote" gorm:"type:text"`
	InternalNote string `json:"internalNote" gorm:"type:text"`
	Referrer     string `json:"referrer" gorm:"type:varchar(255)"`

	// Design-reference image uploaded to the asset store
	DesignImageKey string `json:"designImageKey" gorm:"type:varchar(500)"`
	DesignImageURL string `json:"designImageUrl" gorm:"type:varchar(2048)"`

	// Email delivery tracking (best-effort; patched after creation)
	EmailSent        bool       `json:"emailSent" gorm:"default:false"`
	EmailError       string     `json:"emailError" gorm:"type:text"`
	EmailAttemptedAt *time.Time `json:"emailAttemptedAt"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderMessage is a single entry in an order's message thread
type OrderMessage struct {
	From   string    `json:"from"` // "customer" or "staff"
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the ID so creation never depends on a database default
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Thread decodes the message thread
func (o *Order) Thread() ([]OrderMessage, error) {
	if len(o.Messages) == 0 {
		return nil, nil
	}
	var msgs []OrderMessage
	if err := json.Unmarshal(o.Messages, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SetThread encodes the message thread
func (o *Order) SetThread(msgs []OrderMessage) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	o.Messages = datatypes.JSON(raw)
	return nil
}

// SeedThread initializes the thread with the customer's initial message.
// Empty messages (allowed on order forms) leave the thread empty.
func (o *Order) SeedThread(body string, at time.Time) error {
	if body == "" {
		return nil
	}
	return o.SetThread([]OrderMessage{{From: "customer", Body: body, SentAt: at}})
}
