package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Payment records money received against a sale
type Payment struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID               uuid.UUID          `gorm:"type:uuid;not null;index" json:"sale_id"`
	UserID               uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	PaymentDate          time.Time          `gorm:"not null" json:"payment_date"`
	Amount               int64              `gorm:"not null" json:"-"` // Stored in cents
	PaymentMethod        string             `gorm:"size:50" json:"payment_method"`
	TransactionReference *string            `gorm:"size:255" json:"transaction_reference,omitempty"`
	Status               enum.PaymentStatus `gorm:"default:0;index" json:"status"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	DeletedAt            gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Sale *Sale `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// MarshalJSON converts cents to decimal amounts for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: centsToFloat(p.Amount),
	})
}
