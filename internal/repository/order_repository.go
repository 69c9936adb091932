package repository

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bakery-order-service/internal/models"
)

// ErrOrderNotFound is returned when no order matches the lookup
var ErrOrderNotFound = errors.New("order not found")

// orderNumberAttempts bounds retries when a generated number collides
const orderNumberAttempts = 3

// OrderRepository handles order database operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number int) (*models.Order, error)
	List(ctx context.Context, filters OrderFilters) ([]models.Order, int64, error)
	UpdateEmailStatus(ctx context.Context, id uuid.UUID, sent bool, errMsg string) error
	AppendMessage(ctx context.Context, id uuid.UUID, msg models.OrderMessage) (*models.Order, error)
}

// OrderFilters for listing orders
type OrderFilters struct {
	Status    string
	Email     string
	OrderType string
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order. The human-referenceable order number is
// generated here; a collision on the unique index triggers regeneration.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		if order.OrderNumber == 0 || attempt > 0 {
			order.OrderNumber = generateOrderNumber()
		}
		err = r.db.WithContext(ctx).Create(order).Error
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return err
		}
	}
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number int) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filters OrderFilters) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Email != "" {
		query = query.Where("customer_email = ?", filters.Email)
	}
	if filters.OrderType != "" {
		query = query.Where("order_type = ?", filters.OrderType)
	}
	if filters.FromDate != nil {
		query = query.Where("created_at >= ?", filters.FromDate)
	}
	if filters.ToDate != nil {
		query = query.Where("created_at <= ?", filters.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&orders).Error

	return orders, total, err
}

// UpdateEmailStatus records the confirmation-email outcome on the order.
// This is a blind overwrite; the caller treats failures as log-only.
func (r *orderRepository) UpdateEmailStatus(ctx context.Context, id uuid.UUID, sent bool, errMsg string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"email_sent":         sent,
		"email_error":        errMsg,
		"email_attempted_at": &now,
		"updated_at":         now,
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AppendMessage adds a timestamped entry to the order's message thread
func (r *orderRepository) AppendMessage(ctx context.Context, id uuid.UUID, msg models.OrderMessage) (*models.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	msgs, err := order.Thread()
	if err != nil {
		return nil, err
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	msgs = append(msgs, msg)
	if err := order.SetThread(msgs); err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"messages":   order.Messages,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

// generateOrderNumber returns a 6-digit number customers can quote over
// the phone. Uniqueness is enforced by the index, not the generator.
func generateOrderNumber() int {
	return 100000 + rand.Intn(900000)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
