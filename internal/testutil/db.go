// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/infrastructure/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.NewSQLiteDB(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedProduct inserts a product with the given price in cents and stock
func SeedProduct(t testing.TB, db *gorm.DB, name string, priceCents int64, stock int) *entity.Product {
	t.Helper()
	product := &entity.Product{
		UserID:       uuid.New(),
		ProductName:  name,
		Price:        priceCents,
		CostPrice:    priceCents / 2,
		Stock:        stock,
		ReorderLevel: 2,
	}
	require.NoError(t, db.Omit("Category", "Supplier").Create(product).Error)
	return product
}

// SeedCustomer inserts a customer
func SeedCustomer(t testing.TB, db *gorm.DB, name string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{UserID: uuid.New(), CustomerName: name}
	require.NoError(t, db.Create(customer).Error)
	return customer
}
