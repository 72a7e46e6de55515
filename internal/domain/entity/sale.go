package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale represents a point-of-sale order
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	InvoiceNo     string          `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	TotalAmount   int64           `gorm:"default:0" json:"-"` // Stored in cents
	TaxPercent    float64         `gorm:"default:0" json:"tax"`
	TaxAmount     int64           `gorm:"default:0" json:"-"` // Stored in cents
	FinalAmount   int64           `gorm:"default:0" json:"-"` // Stored in cents
	AmountPaid    int64           `gorm:"default:0" json:"-"` // Stored in cents
	PaymentMethod string          `gorm:"size:50" json:"payment_method"`
	Status        enum.SaleStatus `gorm:"default:0;index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// Due returns the outstanding amount in cents, never negative
func (s *Sale) Due() int64 {
	if due := s.FinalAmount - s.AmountPaid; due > 0 {
		return due
	}
	return 0
}

// MarshalJSON converts cents to decimal amounts for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
		TaxAmount   float64 `json:"tax_amount"`
		FinalAmount float64 `json:"final_amount"`
		AmountPaid  float64 `json:"amount_paid"`
		AmountDue   float64 `json:"amount_due"`
	}{
		Alias:       Alias(s),
		TotalAmount: centsToFloat(s.TotalAmount),
		TaxAmount:   centsToFloat(s.TaxAmount),
		FinalAmount: centsToFloat(s.FinalAmount),
		AmountPaid:  centsToFloat(s.AmountPaid),
		AmountDue:   centsToFloat(s.Due()),
	})
}

// SaleItem is a persisted line item of a sale
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"-"` // Unit price in cents
	PriceItem int64     `gorm:"not null" json:"-"` // Price times quantity in cents
	Discount  float64   `gorm:"default:0" json:"discount"`
	Subtotal  int64     `gorm:"not null" json:"-"` // After line discount, in cents
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// MarshalJSON converts cents to decimal amounts for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		Price     float64 `json:"price"`
		PriceItem float64 `json:"price_item"`
		Subtotal  float64 `json:"subtotal"`
	}{
		Alias:     Alias(si),
		Price:     centsToFloat(si.Price),
		PriceItem: centsToFloat(si.PriceItem),
		Subtotal:  centsToFloat(si.Subtotal),
	})
}
