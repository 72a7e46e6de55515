package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/sangkips/posadmin-api/pkg/pagination"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, productRepo: productRepo}
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	UserID      uuid.UUID
	Name        string
	Description *string
}

// CreateCategory creates a new category with a unique slug
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "category_name", Message: "This field is required"}})
	}

	categorySlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{
		UserID:       input.UserID,
		CategoryName: name,
		Slug:         categorySlug,
		Description:  input.Description,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists categories
func (s *CategoryService) ListCategories(ctx context.Context, params *pagination.PaginationParams, search string, sort pagination.SortParams) (*pagination.PaginatedResult[entity.Category], error) {
	params.Validate()
	categories, total, err := s.categoryRepo.List(ctx, params, search, sort)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(categories, pag), nil
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
}

// UpdateCategory updates a category. Renaming regenerates the slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "category_name", Message: "This field is required"}})
		}
		if name != category.CategoryName {
			category.CategoryName = name
			if slug.Make(name) != category.Slug {
				if category.Slug, err = s.uniqueSlug(ctx, name); err != nil {
					return nil, err
				}
			}
		}
	}
	if input.Description != nil {
		category.Description = input.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category that no product references
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflictError("Category still has products")
	}

	return s.categoryRepo.Delete(ctx, id)
}

// uniqueSlug slugifies name and appends -2, -3, ... until it is free
func (s *CategoryService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "category"
	}

	candidate := base
	for n := 2; ; n++ {
		exists, err := s.categoryRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
