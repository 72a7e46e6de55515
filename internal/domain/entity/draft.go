package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/salecalc"
	"github.com/shopspring/decimal"
)

// SaleDraft is an in-progress sale kept in the draft store until it is
// submitted or discarded. It is never written to the database.
type SaleDraft struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	PaymentMethod string              `json:"payment_method"`
	Items         []salecalc.LineItem `json:"items"`
	TaxPercent    decimal.Decimal     `json:"tax"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewSaleDraft returns an empty draft owned by userID
func NewSaleDraft(userID uuid.UUID) *SaleDraft {
	now := time.Now()
	return &SaleDraft{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []salecalc.LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Calculator rebuilds a calculator from the draft state
func (d *SaleDraft) Calculator() *salecalc.Calculator {
	return salecalc.Restore(d.Items, d.TaxPercent)
}

// Apply copies the calculator state back into the draft
func (d *SaleDraft) Apply(c *salecalc.Calculator) {
	d.Items, d.TaxPercent = c.Snapshot()
	d.UpdatedAt = time.Now()
}
