package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/posadmin-api/internal/infrastructure/repository"
	"github.com/sangkips/posadmin-api/internal/testutil"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/sangkips/posadmin-api/pkg/pagination"
	"github.com/sangkips/posadmin-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCategoryService_Slugs(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewCategoryService(infraRepo.NewCategoryRepository(db), infraRepo.NewProductRepository(db))
	userID := uuid.New()

	first, err := svc.CreateCategory(ctx, &CreateCategoryInput{UserID: userID, Name: "Hot Drinks"})
	require.NoError(t, err)
	assert.Equal(t, "hot-drinks", first.Slug)

	second, err := svc.CreateCategory(ctx, &CreateCategoryInput{UserID: userID, Name: "Hot  drinks!"})
	require.NoError(t, err)
	assert.Equal(t, "hot-drinks-2", second.Slug)

	// a deleted category still holds its slug
	require.NoError(t, svc.DeleteCategory(ctx, second.ID))
	third, err := svc.CreateCategory(ctx, &CreateCategoryInput{UserID: userID, Name: "Hot Drinks"})
	require.NoError(t, err)
	assert.Equal(t, "hot-drinks-3", third.Slug)

	_, err = svc.CreateCategory(ctx, &CreateCategoryInput{UserID: userID, Name: "   "})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	renamed, err := svc.UpdateCategory(ctx, &UpdateCategoryInput{ID: first.ID, Name: strPtr("Cold Drinks")})
	require.NoError(t, err)
	assert.Equal(t, "Cold Drinks", renamed.CategoryName)
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	productRepo := infraRepo.NewProductRepository(db)
	categories := NewCategoryService(infraRepo.NewCategoryRepository(db), productRepo)
	products := NewProductService(productRepo, infraRepo.NewCategoryRepository(db), infraRepo.NewSupplierRepository(db))
	userID := uuid.New()

	category, err := categories.CreateCategory(ctx, &CreateCategoryInput{UserID: userID, Name: "Snacks"})
	require.NoError(t, err)
	product, err := products.CreateProduct(ctx, &ProductInput{UserID: userID, Name: strPtr("Chips"), CategoryID: &category.ID})
	require.NoError(t, err)

	err = categories.DeleteCategory(ctx, category.ID)
	requireAppError(t, err, http.StatusConflict)

	require.NoError(t, products.DeleteProduct(ctx, product.ID))
	require.NoError(t, categories.DeleteCategory(ctx, category.ID))

	_, err = categories.GetCategory(ctx, category.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestSupplierService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	productRepo := infraRepo.NewProductRepository(db)
	supplierRepo := infraRepo.NewSupplierRepository(db)
	suppliers := NewSupplierService(supplierRepo, productRepo)
	products := NewProductService(productRepo, infraRepo.NewCategoryRepository(db), supplierRepo)
	userID := uuid.New()

	_, err := suppliers.CreateSupplier(ctx, &SupplierInput{UserID: userID})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	supplier, err := suppliers.CreateSupplier(ctx, &SupplierInput{UserID: userID, Name: strPtr(" Acme "), Phone: strPtr("0812")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", supplier.SupplierName)

	_, err = products.CreateProduct(ctx, &ProductInput{UserID: userID, Name: strPtr("Beans"), SupplierID: &supplier.ID})
	require.NoError(t, err)
	requireAppError(t, suppliers.DeleteSupplier(ctx, supplier.ID), http.StatusConflict)

	updated, err := suppliers.UpdateSupplier(ctx, supplier.ID, &SupplierInput{ContactPerson: strPtr("Rin")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.SupplierName)
	require.NotNil(t, updated.ContactPerson)
	assert.Equal(t, "Rin", *updated.ContactPerson)
}

func TestCustomerService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewCustomerService(infraRepo.NewCustomerRepository(db))
	userID := uuid.New()

	negative := -5
	_, err := svc.CreateCustomer(ctx, &CustomerInput{UserID: userID, Name: strPtr("Jane"), LoyaltyPoints: &negative})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	customer, err := svc.CreateCustomer(ctx, &CustomerInput{UserID: userID, Name: strPtr("Jane"), Email: strPtr("jane@example.com")})
	require.NoError(t, err)

	list, err := svc.ListCustomers(ctx, &pagination.PaginationParams{}, "EXAMPLE", pagination.SortParams{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, customer.ID, list.Items[0].ID)

	require.NoError(t, svc.DeleteCustomer(ctx, customer.ID))
	_, err = svc.GetCustomer(ctx, customer.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	require.NoError(t, database.SeedDefaultData(db, &config.AdminConfig{Username: "admin", Password: "s3cret"}))

	userRepo := infraRepo.NewUserRepository(db)
	svc := NewAuthService(userRepo, utils.NewJWTManager("test-secret", time.Hour))

	_, err := svc.Login(ctx, &LoginInput{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "s3cret"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	out, err := svc.Login(ctx, &LoginInput{Username: " admin ", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.True(t, out.ExpiresAt.After(time.Now()))
	assert.Equal(t, []string{entity.RoleAdmin}, out.User.RoleNames())
	assert.ElementsMatch(t, entity.AllPermissions, out.User.GetPermissions())

	me, err := svc.Me(ctx, out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", out.User.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginInput{Username: "admin", Password: "s3cret"})
	requireAppError(t, err, http.StatusForbidden)

	_, err = svc.Me(ctx, uuid.New())
	requireAppError(t, err, http.StatusNotFound)
}
