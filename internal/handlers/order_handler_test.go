package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bakery-order-service/internal/models"
)

func newOrderTestRouter(repo *fakeOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewOrderHandler(repo)
	router := gin.New()
	router.GET("/api/v1/orders", handler.List)
	router.GET("/api/v1/orders/:id", handler.Get)
	router.POST("/api/v1/orders/:id/messages", handler.AppendMessage)
	return router
}

func seededOrder() *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   123456,
		Status:        models.OrderStatusNew,
		OrderType:     models.OrderTypeCake,
		CustomerName:  "John Example",
		CustomerEmail: "john@example.com",
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}
	_ = order.SeedThread("Cake: Honey\nDesign Type: Standard", time.Now())
	return order
}

func TestOrderGetByUUID(t *testing.T) {
	repo := &fakeOrderRepo{}
	order := seededOrder()
	repo.orders = append(repo.orders, order)
	router := newOrderTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.OrderNumber != 123456 {
		t.Errorf("order number = %d", got.OrderNumber)
	}
}

func TestOrderGetByNumber(t *testing.T) {
	repo := &fakeOrderRepo{}
	repo.orders = append(repo.orders, seededOrder())
	router := newOrderTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/123456", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	router := newOrderTestRouter(&fakeOrderRepo{})

	for _, path := range []string{
		"/api/v1/orders/999999",
		"/api/v1/orders/" + uuid.NewString(),
		"/api/v1/orders/not-an-identifier",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestOrderList(t *testing.T) {
	repo := &fakeOrderRepo{}
	repo.orders = append(repo.orders, seededOrder(), seededOrder())
	router := newOrderTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Total != 2 || len(body.Orders) != 2 {
		t.Errorf("total = %d, orders = %d, want 2 each", body.Total, len(body.Orders))
	}
}

func TestOrderAppendMessage(t *testing.T) {
	repo := &fakeOrderRepo{}
	order := seededOrder()
	repo.orders = append(repo.orders, order)
	router := newOrderTestRouter(repo)

	payload := bytes.NewBufferString(`{"body": "Your cake will be ready Friday."}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/messages", order.OrderNumber), payload)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	msgs, err := order.Thread()
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("thread length = %d, want 2", len(msgs))
	}
	if msgs[1].From != "staff" {
		t.Errorf("appended message From = %q, want staff default", msgs[1].From)
	}
	if msgs[1].Body != "Your cake will be ready Friday." {
		t.Errorf("appended message body = %q", msgs[1].Body)
	}
}

func TestOrderAppendMessageRequiresBody(t *testing.T) {
	repo := &fakeOrderRepo{}
	order := seededOrder()
	repo.orders = append(repo.orders, order)
	router := newOrderTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/messages", order.OrderNumber), bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
