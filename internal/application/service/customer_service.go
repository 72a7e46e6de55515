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

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput carries create and update fields. On update nil fields are left unchanged.
type CustomerInput struct {
	UserID        uuid.UUID
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	LoyaltyPoints *int
}

func (in *CustomerInput) validate(create bool) error {
	var fieldErrors []apperror.FieldError
	if (create || in.Name != nil) && (in.Name == nil || strings.TrimSpace(*in.Name) == "") {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer_name", Message: "This field is required"})
	}
	if in.LoyaltyPoints != nil && *in.LoyaltyPoints < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "loyalty_points", Message: "Must be 0 or more"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CustomerInput) (*entity.Customer, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		UserID:       input.UserID,
		CustomerName: strings.TrimSpace(*input.Name),
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
	}
	if input.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *input.LoyaltyPoints
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string, sort pagination.SortParams) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, params, search, sort)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomer updates the non-nil fields of a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *CustomerInput) (*entity.Customer, error) {
	if err := input.validate(false); err != nil {
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.CustomerName = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *input.LoyaltyPoints
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer soft-deletes a customer. Existing sales keep their reference.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}
