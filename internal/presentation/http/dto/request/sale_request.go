package request

import (
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one line of a sale. price_item and subtotal are
// recomputed server side and ignored.
type SaleItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Discount  decimal.Decimal  `json:"discount"`
	PriceItem *decimal.Decimal `json:"price_item"`
	Subtotal  *decimal.Decimal `json:"subtotal"`
}

// SaleRequest represents a sale create, update or quote request.
// The order level discount and totals are accepted and ignored.
type SaleRequest struct {
	CustomerID    *string           `json:"customer_id"`
	SaleDate      *string           `json:"sale_date"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      *decimal.Decimal  `json:"discount"`
	PaymentMethod string            `json:"payment_method" binding:"max=50"`
	Status        *enum.SaleStatus  `json:"status"`
	TotalAmount   *decimal.Decimal  `json:"total_amount"`
	FinalAmount   *decimal.Decimal  `json:"final_amount"`
	Items         []SaleItemRequest `json:"items"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	ListRequest
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// CreateDraftRequest opens a new draft
type CreateDraftRequest struct {
	CustomerID    *string `json:"customer_id"`
	PaymentMethod string  `json:"payment_method" binding:"max=50"`
}

// DraftItemRequest edits one draft line. Fields apply in the order
// product_id, price, quantity, discount.
type DraftItemRequest struct {
	ProductID *string          `json:"product_id"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Discount  *decimal.Decimal `json:"discount"`
}

// DraftTaxRequest sets the draft tax percent
type DraftTaxRequest struct {
	Tax *decimal.Decimal `json:"tax" binding:"required"`
}

// SubmitDraftRequest overrides draft header fields when the sale is created
type SubmitDraftRequest struct {
	CustomerID    *string          `json:"customer_id"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,max=50"`
	Status        *enum.SaleStatus `json:"status"`
	SaleDate      *string          `json:"sale_date"`
}
