package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/sangkips/posadmin-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create stores the sale together with its items in one transaction
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	// GetWithDetails loads items, their products and the customer
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	// ReplaceWithItems updates the sale row and swaps its items in one transaction
	ReplaceWithItems(ctx context.Context, sale *entity.Sale) error
	// Cancel marks the sale cancelled and adds restock back to product stock in
	// one transaction. It reports false when the sale was already cancelled or
	// is gone, in which case nothing changes.
	Cancel(ctx context.Context, id uuid.UUID, restock map[uuid.UUID]int) (bool, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, amountPaid int64, status enum.SaleStatus) error
	// DeleteWithRestock soft-deletes the sale, adding restock back unless the
	// sale was already cancelled. It reports false when the sale is gone.
	DeleteWithRestock(ctx context.Context, id uuid.UUID, restock map[uuid.UUID]int) (bool, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.SaleStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Sort       pagination.SortParams
}
