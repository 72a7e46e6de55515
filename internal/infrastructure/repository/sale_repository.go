package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var saleSortColumns = map[string]string{
	"invoice_no":     "invoice_no",
	"sale_date":      "sale_date",
	"total_amount":   "total_amount",
	"final_amount":   "final_amount",
	"payment_method": "payment_method",
	"status":         "status",
	"created_at":     "created_at",
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := sale.Items
		if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		sale.Items = items
		return nil
	})
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) ReplaceWithItems(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := sale.Items
		if err := tx.Omit(clause.Associations).Save(sale).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&entity.SaleItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = uuid.Nil
			items[i].SaleID = sale.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		sale.Items = items
		return nil
	})
}

func (r *saleRepository) Cancel(ctx context.Context, id uuid.UUID, restock map[uuid.UUID]int) (bool, error) {
	var cancelled bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := markCancelled(tx, id)
		if err != nil || !ok {
			return err
		}
		cancelled = true
		return incrementStock(tx, restock)
	})
	return cancelled, err
}

func (r *saleRepository) UpdatePayment(ctx context.Context, id uuid.UUID, amountPaid int64, status enum.SaleStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount_paid": amountPaid,
			"status":      status,
		}).Error
}

// DeleteWithRestock flips the status to cancelled before deleting, so a
// concurrent cancel or delete of the same sale finds nothing left to restock.
func (r *saleRepository) DeleteWithRestock(ctx context.Context, id uuid.UUID, restock map[uuid.UUID]int) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flipped, err := markCancelled(tx, id)
		if err != nil {
			return err
		}
		if flipped {
			if err := incrementStock(tx, restock); err != nil {
				return err
			}
		}

		result := tx.Delete(&entity.Sale{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errSaleGone
		}
		return nil
	})
	if errors.Is(err, errSaleGone) {
		return false, nil
	}
	return err == nil, err
}

var errSaleGone = errors.New("sale no longer exists")

// markCancelled only matches a live sale that is not cancelled yet. Row
// locks make the loser of two concurrent calls see zero rows.
func markCancelled(tx *gorm.DB, id uuid.UUID) (bool, error) {
	result := tx.Model(&entity.Sale{}).
		Where("id = ? AND status <> ?", id, enum.SaleStatusCancelled).
		Update("status", enum.SaleStatusCancelled)
	return result.RowsAffected > 0, result.Error
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	query := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Scopes(SearchScope(params.Search, "invoice_no", "payment_method"))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("sale_date >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("sale_date < ?", params.EndDate.AddDate(0, 0, 1))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(SortScope(params.Sort, saleSortColumns, "sale_date DESC"), Paginate(params.Pagination)).
		Preload("Customer").
		Find(&sales).Error

	return sales, total, err
}
