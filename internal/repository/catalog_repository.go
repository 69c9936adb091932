package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bakery-order-service/internal/models"
)

// ErrProductNotFound is returned when no product matches the slug
var ErrProductNotFound = errors.New("product not found")

// CatalogRepository serves the read-side catalog data
type CatalogRepository interface {
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListTestimonials(ctx context.Context) ([]models.Testimonial, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	query := r.db.WithContext(ctx).Where("is_available = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("is_featured DESC, name ASC").Find(&products).Error
	return products, err
}

func (r *catalogRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("published_at DESC").
		Find(&testimonials).Error
	return testimonials, err
}
