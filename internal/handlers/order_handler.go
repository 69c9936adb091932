package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bakery-order-service/internal/models"
	"bakery-order-service/internal/repository"
)

// OrderHandler serves the admin order review endpoints
type OrderHandler struct {
	orderRepo repository.OrderRepository
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderRepo repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orderRepo: orderRepo}
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	filters := repository.OrderFilters{
		Status:    c.Query("status"),
		Email:     c.Query("email"),
		OrderType: c.Query("orderType"),
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.FromDate = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.ToDate = &t
		}
	}
	if limit := c.Query("limit"); limit != "" {
		filters.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		filters.Offset, _ = strconv.Atoi(offset)
	}

	orders, total, err := h.orderRepo.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
	})
}

// Get handles GET /api/v1/orders/:id. The path segment may be either
// the internal UUID or the customer-facing order number.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.lookupOrder(c)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// appendMessageRequest is a staff reply added to an order's thread
type appendMessageRequest struct {
	Body string `json:"body" binding:"required"`
	From string `json:"from"`
}

// AppendMessage handles POST /api/v1/orders/:id/messages
func (h *OrderHandler) AppendMessage(c *gin.Context) {
	order, err := h.lookupOrder(c)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.From == "" {
		req.From = "staff"
	}

	updated, err := h.orderRepo.AppendMessage(c.Request.Context(), order.ID, models.OrderMessage{
		From:   req.From,
		Body:   req.Body,
		SentAt: time.Now(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to append message"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) lookupOrder(c *gin.Context) (*models.Order, error) {
	idParam := c.Param("id")

	if id, err := uuid.Parse(idParam); err == nil {
		return h.orderRepo.GetByID(c.Request.Context(), id)
	}
	if number, err := strconv.Atoi(idParam); err == nil {
		return h.orderRepo.GetByNumber(c.Request.Context(), number)
	}
	return nil, repository.ErrOrderNotFound
}
