package repository

import (
	"context"
	"time"

	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) activeSales(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("status <> ?", enum.SaleStatusCancelled)
}

func (r *analyticsRepository) CountSales(ctx context.Context) (int64, error) {
	var count int64
	err := r.activeSales(ctx).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) SumRevenue(ctx context.Context, since *time.Time) (int64, error) {
	var sum int64
	query := r.activeSales(ctx)
	if since != nil {
		query = query.Where("sale_date >= ?", *since)
	}
	err := query.Select("COALESCE(SUM(final_amount), 0)").Scan(&sum).Error
	return sum, err
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select("sale_items.product_id AS product_id, products.product_name AS product_name, "+
			"SUM(sale_items.quantity) AS quantity_sold, SUM(sale_items.subtotal) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id AND sales.deleted_at IS NULL").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.status <> ?", enum.SaleStatusCancelled).
		Group("sale_items.product_id, products.product_name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *analyticsRepository) SaleAmountsSince(ctx context.Context, since time.Time) ([]domainRepo.SaleAmountRow, error) {
	var rows []domainRepo.SaleAmountRow
	err := r.activeSales(ctx).
		Where("sale_date >= ?", since).
		Select("sale_date, final_amount").
		Order("sale_date ASC").
		Scan(&rows).Error
	return rows, err
}
