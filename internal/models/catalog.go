package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductCategory groups catalog entries
type ProductCategory string

const (
	CategoryCake   ProductCategory = "cake"
	CategoryHamper ProductCategory = "hamper"
)

// Product is a catalog entry the marketing site renders
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Slug        string          `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Category    ProductCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	BasePrice   float64         `json:"basePrice"`
	ImageURL    string          `json:"imageUrl" gorm:"type:varchar(2048)"`
	Flavors     datatypes.JSON  `json:"flavors" gorm:"type:jsonb"`
	Sizes       datatypes.JSON  `json:"sizes" gorm:"type:jsonb"`
	IsFeatured  bool            `json:"isFeatured" gorm:"default:false"`
	IsAvailable bool            `json:"isAvailable" gorm:"default:true;index"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Testimonial is a published customer quote
type Testimonial struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Author      string     `json:"author" gorm:"type:varchar(255);not null"`
	Quote       string     `json:"quote" gorm:"type:text;not null"`
	Rating      int        `json:"rating" gorm:"default:5"`
	Source      string     `json:"source" gorm:"type:varchar(100)"`
	IsPublished bool       `json:"isPublished" gorm:"default:true;index"`
	PublishedAt *time.Time `json:"publishedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
