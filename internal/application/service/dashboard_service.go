package service

import (
	"context"
	"time"

	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/pkg/pagination"
)

const (
	dashboardRecentSales = 5
	dashboardTopProducts = 5
	dashboardDays        = 7
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	analyticsRepo repository.AnalyticsRepository,
) *DashboardService {
	return &DashboardService{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers int64             `json:"total_customers"`
	TotalProducts  int64             `json:"total_products"`
	TotalSales     int64             `json:"total_sales"`
	TotalRevenue   float64           `json:"total_revenue"`
	RevenueToday   float64           `json:"revenue_today"`
	LowStockCount  int64             `json:"low_stock_count"`
	TopProducts    []TopProductPoint `json:"top_products"`
	DailySalesData []DailySalesPoint `json:"daily_sales_data"`
	RecentSales    []entity.Sale     `json:"recent_sales"`
}

// TopProductPoint represents a best selling product
type TopProductPoint struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int64   `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string  `json:"date"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// GetDashboardStats returns dashboard statistics. Cancelled sales are excluded
// from every sales figure.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	countOnly := &pagination.PaginationParams{Page: 1, PerPage: 1}

	_, customerCount, err := s.customerRepo.List(ctx, countOnly, "", pagination.SortParams{})
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = customerCount

	_, productCount, err := s.productRepo.List(ctx, &repository.ProductFilterParams{Pagination: countOnly})
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	if stats.LowStockCount, err = s.productRepo.CountLowStock(ctx); err != nil {
		return nil, err
	}

	if stats.TotalSales, err = s.analyticsRepo.CountSales(ctx); err != nil {
		return nil, err
	}

	totalRevenue, err := s.analyticsRepo.SumRevenue(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = centsToDecimal(totalRevenue).InexactFloat64()

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayRevenue, err := s.analyticsRepo.SumRevenue(ctx, &startOfDay)
	if err != nil {
		return nil, err
	}
	stats.RevenueToday = centsToDecimal(todayRevenue).InexactFloat64()

	top, err := s.analyticsRepo.GetTopProducts(ctx, dashboardTopProducts)
	if err != nil {
		return nil, err
	}
	stats.TopProducts = make([]TopProductPoint, 0, len(top))
	for _, p := range top {
		stats.TopProducts = append(stats.TopProducts, TopProductPoint{
			ProductID:    p.ProductID.String(),
			ProductName:  p.ProductName,
			QuantitySold: p.QuantitySold,
			Revenue:      centsToDecimal(p.Revenue).InexactFloat64(),
		})
	}

	firstDay := startOfDay.AddDate(0, 0, -(dashboardDays - 1))
	rows, err := s.analyticsRepo.SaleAmountsSince(ctx, firstDay)
	if err != nil {
		return nil, err
	}
	stats.DailySalesData = bucketDailySales(rows, firstDay, dashboardDays)

	recent, _, err := s.saleRepo.List(ctx, &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: dashboardRecentSales},
		Sort:       pagination.SortParams{Field: "sale_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []entity.Sale{}
	}
	stats.RecentSales = recent

	return stats, nil
}

// bucketDailySales groups sale amounts into one point per UTC day, starting
// at firstDay. Days without sales are present with zero values.
func bucketDailySales(rows []repository.SaleAmountRow, firstDay time.Time, days int) []DailySalesPoint {
	counts := make([]int, days)
	cents := make([]int64, days)
	for _, row := range rows {
		idx := int(row.SaleDate.UTC().Sub(firstDay) / (24 * time.Hour))
		if idx < 0 || idx >= days {
			continue
		}
		counts[idx]++
		cents[idx] += row.FinalAmount
	}

	points := make([]DailySalesPoint, days)
	for i := range points {
		points[i] = DailySalesPoint{
			Date:    firstDay.AddDate(0, 0, i).Format("2006-01-02"),
			Sales:   counts[i],
			Revenue: centsToDecimal(cents[i]).InexactFloat64(),
		}
	}
	return points
}
