package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/domain/salecalc"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DraftService exposes the line calculator as a server-side "new sale"
// session. Each call loads the draft, applies one operation and saves it.
type DraftService struct {
	store        repository.DraftStore
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	sales        *SaleService
	logger       *zap.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(
	store repository.DraftStore,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	sales *SaleService,
	logger *zap.Logger,
) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		store:        store,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sales:        sales,
		logger:       logger,
	}
}

// DraftLine is a rendered draft line with its derived amounts
type DraftLine struct {
	Index     int     `json:"index"`
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Discount  float64 `json:"discount"`
	PriceItem float64 `json:"price_item"`
	Subtotal  float64 `json:"subtotal"`
}

// DraftView is a draft with its current totals
type DraftView struct {
	ID            uuid.UUID   `json:"id"`
	CustomerID    *uuid.UUID  `json:"customer_id,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Items         []DraftLine `json:"items"`
	Tax           float64     `json:"tax"`
	TotalAmount   float64     `json:"total_amount"`
	TaxAmount     float64     `json:"tax_amount"`
	FinalAmount   float64     `json:"final_amount"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func renderAmount(d decimal.Decimal) float64 {
	return salecalc.RoundCurrency(d).InexactFloat64()
}

func newDraftView(draft *entity.SaleDraft) *DraftView {
	calc := draft.Calculator()
	totals := calc.Totals()

	lines := calc.LineItems()
	items := make([]DraftLine, len(lines))
	for i, line := range lines {
		items[i] = DraftLine{
			Index:     i,
			ProductID: line.ProductID,
			Price:     line.UnitPrice.InexactFloat64(),
			Quantity:  line.Quantity.InexactFloat64(),
			Discount:  line.DiscountPercent.InexactFloat64(),
			PriceItem: renderAmount(line.LineAmount()),
			Subtotal:  renderAmount(line.Subtotal()),
		}
	}

	return &DraftView{
		ID:            draft.ID,
		CustomerID:    draft.CustomerID,
		PaymentMethod: draft.PaymentMethod,
		Items:         items,
		Tax:           totals.TaxPercent.InexactFloat64(),
		TotalAmount:   renderAmount(totals.TotalAmount),
		TaxAmount:     renderAmount(totals.TaxAmount),
		FinalAmount:   renderAmount(totals.FinalAmount),
		CreatedAt:     draft.CreatedAt,
		UpdatedAt:     draft.UpdatedAt,
	}
}

// CreateDraftInput represents the create draft input
type CreateDraftInput struct {
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	PaymentMethod string
}

// CreateDraft starts an empty draft
func (s *DraftService) CreateDraft(ctx context.Context, input *CreateDraftInput) (*DraftView, error) {
	if err := s.checkCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	draft := entity.NewSaleDraft(input.UserID)
	draft.CustomerID = input.CustomerID
	draft.PaymentMethod = input.PaymentMethod

	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return newDraftView(draft), nil
}

// GetDraft returns the draft and its totals
func (s *DraftService) GetDraft(ctx context.Context, userID, id uuid.UUID) (*DraftView, error) {
	draft, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return newDraftView(draft), nil
}

// AddItem appends an empty line and returns its index
func (s *DraftService) AddItem(ctx context.Context, userID, id uuid.UUID) (*DraftView, int, error) {
	index := -1
	view, err := s.mutate(ctx, userID, id, func(c *salecalc.Calculator) error {
		index = c.AddLineItem()
		return nil
	})
	return view, index, err
}

// DraftItemPatch lists the fields to change on a line. They are applied in
// the order product, price, quantity, discount.
type DraftItemPatch struct {
	ProductID *string
	Price     *decimal.Decimal
	Quantity  *decimal.Decimal
	Discount  *decimal.Decimal
}

// UpdateItem applies a patch to the line at index
func (s *DraftService) UpdateItem(ctx context.Context, userID, id uuid.UUID, index int, patch *DraftItemPatch) (*DraftView, error) {
	var catalogPrice decimal.NullDecimal
	if patch.ProductID != nil {
		var err error
		if catalogPrice, err = s.resolvePrice(ctx, *patch.ProductID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, userID, id, func(c *salecalc.Calculator) error {
		if patch.ProductID != nil {
			if err := c.SetProduct(index, *patch.ProductID, catalogPrice); err != nil {
				return err
			}
		}
		if patch.Price != nil {
			if err := c.SetUnitPrice(index, *patch.Price); err != nil {
				return err
			}
		}
		if patch.Quantity != nil {
			if err := c.SetQuantity(index, *patch.Quantity); err != nil {
				return err
			}
		}
		if patch.Discount != nil {
			if err := c.SetDiscountPercent(index, *patch.Discount); err != nil {
				return err
			}
		}
		if patch.ProductID == nil && patch.Price == nil && patch.Quantity == nil && patch.Discount == nil {
			// an empty patch still reports an unknown index
			if index < 0 || index >= c.Len() {
				return salecalc.ErrInvalidIndex
			}
		}
		return nil
	})
}

// RemoveItem removes the line at index
func (s *DraftService) RemoveItem(ctx context.Context, userID, id uuid.UUID, index int) (*DraftView, error) {
	return s.mutate(ctx, userID, id, func(c *salecalc.Calculator) error {
		return c.RemoveLineItem(index)
	})
}

// SetTax sets the order tax percentage
func (s *DraftService) SetTax(ctx context.Context, userID, id uuid.UUID, tax decimal.Decimal) (*DraftView, error) {
	return s.mutate(ctx, userID, id, func(c *salecalc.Calculator) error {
		c.SetTaxPercent(tax)
		return nil
	})
}

// ResetDraft clears all lines and the tax
func (s *DraftService) ResetDraft(ctx context.Context, userID, id uuid.UUID) (*DraftView, error) {
	return s.mutate(ctx, userID, id, func(c *salecalc.Calculator) error {
		c.Reset()
		return nil
	})
}

// DiscardDraft throws the draft away
func (s *DraftService) DiscardDraft(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// SubmitDraftInput overrides draft header fields on submission
type SubmitDraftInput struct {
	CustomerID    *uuid.UUID
	PaymentMethod *string
	Status        *enum.SaleStatus
	SaleDate      *time.Time
}

// SubmitDraft creates a sale from the draft and discards it
func (s *DraftService) SubmitDraft(ctx context.Context, userID, id uuid.UUID, input *SubmitDraftInput) (*entity.Sale, error) {
	draft, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(draft.Items) == 0 {
		return nil, apperror.NewUnprocessableError("Draft has no items")
	}

	saleInput, err := draftToSaleInput(draft)
	if err != nil {
		return nil, err
	}
	if input != nil {
		if input.CustomerID != nil {
			saleInput.CustomerID = input.CustomerID
		}
		if input.PaymentMethod != nil {
			saleInput.PaymentMethod = *input.PaymentMethod
		}
		saleInput.Status = input.Status
		saleInput.SaleDate = input.SaleDate
	}

	sale, err := s.sales.CreateSale(ctx, saleInput)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to discard submitted draft", zap.String("draft_id", id.String()), zap.Error(err))
	}
	return sale, nil
}

// draftToSaleInput requires whole quantities in [1, MaxQuantity] and real product IDs.
// Prices are passed as overrides so the sale matches what the cashier saw.
func draftToSaleInput(draft *entity.SaleDraft) (*SaleInput, error) {
	input := &SaleInput{
		UserID:        draft.UserID,
		CustomerID:    draft.CustomerID,
		Tax:           draft.TaxPercent,
		PaymentMethod: draft.PaymentMethod,
		Items:         make([]SaleItemInput, 0, len(draft.Items)),
	}

	var fieldErrors []apperror.FieldError
	for i, line := range draft.Items {
		prefix := fmt.Sprintf("items.%d.", i)

		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "product_id", Message: "Select a product"})
		}
		quantity, msg := WholeQuantity(line.Quantity)
		if msg != "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "quantity", Message: msg})
		}

		price := line.UnitPrice
		input.Items = append(input.Items, SaleItemInput{
			ProductID: productID,
			Quantity:  quantity,
			Price:     &price,
			Discount:  line.DiscountPercent,
		})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}
	return input, nil
}

// mutate loads a draft, applies fn to its calculator and saves the result.
// Nothing is saved when fn fails.
func (s *DraftService) mutate(ctx context.Context, userID, id uuid.UUID, fn func(*salecalc.Calculator) error) (*DraftView, error) {
	draft, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	calc := draft.Calculator()
	if err := fn(calc); err != nil {
		if errors.Is(err, salecalc.ErrInvalidIndex) {
			return nil, apperror.ErrInvalidLineIndex
		}
		return nil, err
	}
	draft.Apply(calc)

	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return newDraftView(draft), nil
}

// load returns the draft if it exists and belongs to userID
func (s *DraftService) load(ctx context.Context, userID, id uuid.UUID) (*entity.SaleDraft, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil || draft.UserID != userID {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return draft, nil
}

// resolvePrice looks up the catalog price. Unknown or malformed IDs resolve
// to an invalid price, which the calculator turns into zero.
func (s *DraftService) resolvePrice(ctx context.Context, productID string) (decimal.NullDecimal, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return decimal.NullDecimal{}, nil
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if product == nil {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(centsToDecimal(product.Price)), nil
}

func (s *DraftService) checkCustomer(ctx context.Context, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	customer, err := s.customerRepo.GetByID(ctx, *customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	return nil
}
