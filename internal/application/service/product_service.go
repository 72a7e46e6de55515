package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/sangkips/posadmin-api/pkg/pagination"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// ProductInput carries create and update fields. On update nil fields are
// left unchanged. Prices are decimal currency amounts.
type ProductInput struct {
	UserID       uuid.UUID
	CategoryID   *uuid.UUID
	SupplierID   *uuid.UUID
	Name         *string
	Price        *float64
	CostPrice    *float64
	Stock        *int
	ReorderLevel *int
	Barcode      *string
	Description  *string
}

func (in *ProductInput) validate(create bool) error {
	var fieldErrors []apperror.FieldError
	if (create || in.Name != nil) && (in.Name == nil || strings.TrimSpace(*in.Name) == "") {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "product_name", Message: "This field is required"})
	}
	if in.Price != nil && *in.Price < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "Must be 0 or more"})
	}
	if in.CostPrice != nil && *in.CostPrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cost_price", Message: "Must be 0 or more"})
	}
	if in.Stock != nil && *in.Stock < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "stock", Message: "Must be 0 or more"})
	}
	if in.ReorderLevel != nil && *in.ReorderLevel < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "reorder_level", Message: "Must be 0 or more"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	barcode := normalizeBarcode(input.Barcode)
	if err := s.checkBarcode(ctx, barcode, uuid.Nil); err != nil {
		return nil, err
	}

	product := &entity.Product{
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
		SupplierID:  input.SupplierID,
		ProductName: strings.TrimSpace(*input.Name),
		Barcode:     barcode,
		Description: input.Description,
	}
	if input.Price != nil {
		product.Price = toCents(*input.Price)
	}
	if input.CostPrice != nil {
		product.CostPrice = toCents(*input.CostPrice)
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct updates the non-nil fields of a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(false); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.ProductName = strings.TrimSpace(*input.Name)
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
		product.Supplier = nil
	}
	if input.Price != nil {
		product.Price = toCents(*input.Price)
	}
	if input.CostPrice != nil {
		product.CostPrice = toCents(*input.CostPrice)
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}
	if input.Barcode != nil {
		barcode := normalizeBarcode(input.Barcode)
		if err := s.checkBarcode(ctx, barcode, product.ID); err != nil {
			return nil, err
		}
		product.Barcode = barcode
	}
	if input.Description != nil {
		product.Description = input.Description
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) checkReferences(ctx context.Context, input *ProductInput) error {
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperror.NewNotFoundError("Category")
		}
	}
	if input.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *input.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return apperror.NewNotFoundError("Supplier")
		}
	}
	return nil
}

// checkBarcode rejects a barcode already used by a product other than self
func (s *ProductService) checkBarcode(ctx context.Context, barcode *string, self uuid.UUID) error {
	if barcode == nil {
		return nil
	}
	existing, err := s.productRepo.GetByBarcode(ctx, *barcode)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Barcode already exists")
	}
	return nil
}

// normalizeBarcode maps blank barcodes to NULL so the unique index ignores them
func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
