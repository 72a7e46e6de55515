package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog product with its stock level
type Product struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID   *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	SupplierID   *uuid.UUID     `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	ProductName  string         `gorm:"size:255;not null" json:"product_name"`
	Price        int64          `gorm:"default:0" json:"-"` // Stored in cents
	CostPrice    int64          `gorm:"default:0" json:"-"` // Stored in cents
	Stock        int            `gorm:"default:0" json:"stock"`
	ReorderLevel int            `gorm:"default:0" json:"reorder_level"`
	Barcode      *string        `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock has reached the reorder level
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// MarshalJSON converts cents to decimal amounts for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price     float64 `json:"price"`
		CostPrice float64 `json:"cost_price"`
		LowStock  bool    `json:"low_stock"`
	}{
		Alias:     Alias(p),
		Price:     centsToFloat(p.Price),
		CostPrice: centsToFloat(p.CostPrice),
		LowStock:  p.IsLowStock(),
	})
}

// Category represents a product category
type Category struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryName string         `gorm:"size:255;not null" json:"category_name"`
	Slug         string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
