package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	QuantitySold int64     `json:"quantity_sold"`
	Revenue      int64     `json:"-"` // cents
}

// SaleAmountRow is a minimal projection of a sale used for bucketing
type SaleAmountRow struct {
	SaleDate    time.Time
	FinalAmount int64
}

// AnalyticsRepository defines aggregation queries over non-cancelled sales
type AnalyticsRepository interface {
	CountSales(ctx context.Context) (int64, error)
	// SumRevenue returns the sum of final amounts in cents, optionally since a time
	SumRevenue(ctx context.Context, since *time.Time) (int64, error)
	GetTopProducts(ctx context.Context, limit int) ([]TopProductResult, error)
	// SaleAmountsSince returns date and final amount of every sale since a time
	SaleAmountsSince(ctx context.Context, since time.Time) ([]SaleAmountRow, error)
}
