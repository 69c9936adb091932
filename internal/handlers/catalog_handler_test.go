package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bakery-order-service/internal/models"
	"bakery-order-service/internal/repository"
)

type fakeCatalogRepo struct {
	products     []models.Product
	testimonials []models.Testimonial
}

func (f *fakeCatalogRepo) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	if category == "" {
		return f.products, nil
	}
	var out []models.Product
	for _, p := range f.products {
		if string(p.Category) == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].Slug == slug {
			return &f.products[i], nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeCatalogRepo) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	return f.testimonials, nil
}

func newCatalogTestRouter(repo *fakeCatalogRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(repo)
	router := gin.New()
	router.GET("/api/v1/products", handler.ListProducts)
	router.GET("/api/v1/products/:slug", handler.GetProduct)
	router.GET("/api/v1/testimonials", handler.ListTestimonials)
	return router
}

func TestCatalogListProducts(t *testing.T) {
	repo := &fakeCatalogRepo{
		products: []models.Product{
			{ID: uuid.New(), Slug: "honey-cake", Name: "Honey Cake", Category: "cake"},
			{ID: uuid.New(), Slug: "tea-hamper", Name: "Afternoon Tea Hamper", Category: "hamper"},
		},
	}
	router := newCatalogTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=cake", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].Slug != "honey-cake" {
		t.Errorf("filtered products = %+v", body.Products)
	}
}

func TestCatalogGetProduct(t *testing.T) {
	repo := &fakeCatalogRepo{
		products: []models.Product{
			{ID: uuid.New(), Slug: "honey-cake", Name: "Honey Cake", Category: "cake"},
		},
	}
	router := newCatalogTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/honey-cake", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/no-such-cake", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", w.Code)
	}
}

func TestCatalogListTestimonials(t *testing.T) {
	repo := &fakeCatalogRepo{
		testimonials: []models.Testimonial{
			{ID: uuid.New(), Author: "A happy customer", Quote: "Best honey cake in town.", Rating: 5},
		},
	}
	router := newCatalogTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Testimonials []models.Testimonial `json:"testimonials"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Testimonials) != 1 {
		t.Errorf("testimonials = %d, want 1", len(body.Testimonials))
	}
}
