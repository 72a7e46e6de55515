package request

import (
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PaymentRequest represents a payment create or update request
type PaymentRequest struct {
	SaleID               *string             `json:"sale_id"`
	PaymentDate          *string             `json:"payment_date"`
	Amount               *decimal.Decimal    `json:"amount"`
	PaymentMethod        *string             `json:"payment_method" binding:"omitempty,max=50"`
	TransactionReference *string             `json:"transaction_reference" binding:"omitempty,max=255"`
	Status               *enum.PaymentStatus `json:"status"`
}

// PaymentFilterRequest represents payment filter parameters
type PaymentFilterRequest struct {
	ListRequest
	SaleID string `form:"sale_id"`
	Status string `form:"status"`
}
