package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery-order-service/internal/repository"
)

// CatalogHandler serves the read-side catalog the marketing site renders
type CatalogHandler struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogRepo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	category := c.Query("category")

	products, err := h.catalogRepo.ListProducts(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct handles GET /api/v1/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogRepo.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListTestimonials handles GET /api/v1/testimonials
func (h *CatalogHandler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.catalogRepo.ListTestimonials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list testimonials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": testimonials})
}
