package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/domain/salecalc"
	"github.com/sangkips/posadmin-api/internal/infrastructure/events"
	"github.com/sangkips/posadmin-api/internal/infrastructure/metrics"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/sangkips/posadmin-api/pkg/pagination"
	"github.com/sangkips/posadmin-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService handles sale-related operations
type SaleService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRepository
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SaleService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// SaleItemInput is one requested line. Price overrides the catalog price when set.
type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     *decimal.Decimal
	Discount  decimal.Decimal
}

// SaleInput represents the create, update and quote input
type SaleInput struct {
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	SaleDate      *time.Time
	Tax           decimal.Decimal
	PaymentMethod string
	Status        *enum.SaleStatus
	Items         []SaleItemInput
}

func (in *SaleInput) validate() error {
	var fieldErrors []apperror.FieldError
	if len(in.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "At least one item is required"})
	}
	if in.Tax.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax", Message: "Must be 0 or more"})
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items.%d.", i)
		if item.ProductID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "product_id", Message: "This field is required"})
		}
		if item.Quantity <= 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "quantity", Message: "Must be greater than 0"})
		}
		if item.Discount.IsNegative() || item.Discount.GreaterThan(decimal.NewFromInt(100)) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "discount", Message: "Must be between 0 and 100"})
		}
		if item.Price != nil && item.Price.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: prefix + "price", Message: "Must be 0 or more"})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// pricedSale is a validated input priced by the calculator
type pricedSale struct {
	calc     *salecalc.Calculator
	products map[uuid.UUID]*entity.Product
	input    *SaleInput
}

// price validates the input, resolves products and runs every line through
// the calculator in the dashboard's order: product, price, quantity, discount.
func (s *SaleService) price(ctx context.Context, input *SaleInput) (*pricedSale, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	seen := make(map[uuid.UUID]bool, len(input.Items))
	for _, item := range input.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	calc := salecalc.New()
	for _, item := range input.Items {
		product, exists := productMap[item.ProductID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}

		idx := calc.AddLineItem()
		if err := calc.SetProduct(idx, product.ID.String(), decimal.NewNullDecimal(centsToDecimal(product.Price))); err != nil {
			return nil, err
		}
		if item.Price != nil {
			if err := calc.SetUnitPrice(idx, *item.Price); err != nil {
				return nil, err
			}
		}
		if err := calc.SetQuantity(idx, decimal.NewFromInt(int64(item.Quantity))); err != nil {
			return nil, err
		}
		if err := calc.SetDiscountPercent(idx, item.Discount); err != nil {
			return nil, err
		}
	}
	calc.SetTaxPercent(input.Tax)

	return &pricedSale{calc: calc, products: productMap, input: input}, nil
}

// items converts calculator lines into rounded sale items
func (p *pricedSale) items() []entity.SaleItem {
	lines := p.calc.LineItems()
	items := make([]entity.SaleItem, len(lines))
	for i, line := range lines {
		items[i] = entity.SaleItem{
			ProductID: p.input.Items[i].ProductID,
			Quantity:  p.input.Items[i].Quantity,
			Price:     salecalc.ToCents(line.UnitPrice),
			PriceItem: salecalc.ToCents(line.LineAmount()),
			Discount:  line.DiscountPercent.InexactFloat64(),
			Subtotal:  salecalc.ToCents(line.Subtotal()),
		}
	}
	return items
}

// applyTotals writes the rounded order totals onto sale
func (p *pricedSale) applyTotals(sale *entity.Sale) {
	totals := p.calc.Totals()
	sale.TotalAmount = salecalc.ToCents(totals.TotalAmount)
	sale.TaxPercent = totals.TaxPercent.InexactFloat64()
	sale.TaxAmount = salecalc.ToCents(totals.TaxAmount)
	sale.FinalAmount = salecalc.ToCents(totals.FinalAmount)
}

// quantities sums requested quantities per product
func (p *pricedSale) quantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(p.input.Items))
	for _, item := range p.input.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// QuoteLine is a priced line of a quote
type QuoteLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	PriceItem   float64   `json:"price_item"`
	Discount    float64   `json:"discount"`
	Subtotal    float64   `json:"subtotal"`
}

// Quote is a priced sale that was not persisted
type Quote struct {
	Items       []QuoteLine `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Tax         float64     `json:"tax"`
	TaxAmount   float64     `json:"tax_amount"`
	FinalAmount float64     `json:"final_amount"`
}

// QuoteSale prices a sale without persisting it or touching stock
func (s *SaleService) QuoteSale(ctx context.Context, input *SaleInput) (*Quote, error) {
	priced, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	items := priced.items()
	quote := &Quote{Items: make([]QuoteLine, len(items))}
	for i, item := range items {
		quote.Items[i] = QuoteLine{
			ProductID:   item.ProductID,
			ProductName: priced.products[item.ProductID].ProductName,
			Quantity:    item.Quantity,
			Price:       centsToDecimal(item.Price).InexactFloat64(),
			PriceItem:   centsToDecimal(item.PriceItem).InexactFloat64(),
			Discount:    item.Discount,
			Subtotal:    centsToDecimal(item.Subtotal).InexactFloat64(),
		}
	}

	var sale entity.Sale
	priced.applyTotals(&sale)
	quote.TotalAmount = centsToDecimal(sale.TotalAmount).InexactFloat64()
	quote.Tax = sale.TaxPercent
	quote.TaxAmount = centsToDecimal(sale.TaxAmount).InexactFloat64()
	quote.FinalAmount = centsToDecimal(sale.FinalAmount).InexactFloat64()
	return quote, nil
}

// CreateSale prices and stores a sale, decrementing stock atomically
func (s *SaleService) CreateSale(ctx context.Context, input *SaleInput) (*entity.Sale, error) {
	status := enum.SaleStatusPending
	if input.Status != nil {
		status = *input.Status
	}
	if status == enum.SaleStatusCancelled {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: "A new sale cannot be cancelled"}})
	}

	priced, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	decrements := priced.quantities()
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, decrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, insufficientStockError(failedIDs, priced.products)
	}

	now := time.Now().UTC()
	saleDate := now
	if input.SaleDate != nil {
		saleDate = input.SaleDate.UTC()
	}

	sale := &entity.Sale{
		UserID:        input.UserID,
		CustomerID:    input.CustomerID,
		InvoiceNo:     utils.GenerateInvoiceNo(now),
		SaleDate:      saleDate,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Status:        status,
		Items:         priced.items(),
	}
	priced.applyTotals(sale)
	settled := settledAtTill(sale)
	if settled {
		sale.AmountPaid = sale.FinalAmount
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.restoreStock(ctx, decrements, sale.InvoiceNo)
		return nil, err
	}
	if settled {
		s.recordTillPayment(ctx, sale, sale.FinalAmount, sale.SaleDate)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_no", sale.InvoiceNo),
		zap.Int64("final_amount_cents", sale.FinalAmount),
	)
	s.metrics.SaleCreated(centsToDecimal(sale.FinalAmount).InexactFloat64())

	created, err := s.saleRepo.GetWithDetails(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSaleCreated, created)
	return created, nil
}

// UpdateSale replaces the editable fields and items of a sale. Stock is
// reconciled in one batch: old quantities back in, new quantities out.
func (s *SaleService) UpdateSale(ctx context.Context, id uuid.UUID, input *SaleInput) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == enum.SaleStatusCancelled {
		return nil, apperror.NewBadRequestError("Cancelled sales cannot be updated")
	}

	priced, err := s.price(ctx, input)
	if err != nil {
		return nil, err
	}

	status := sale.Status
	if input.Status != nil {
		status = *input.Status
	}

	deltas := make(map[uuid.UUID]int)
	for _, item := range sale.Items {
		deltas[item.ProductID] += item.Quantity
	}
	if status != enum.SaleStatusCancelled {
		for productID, qty := range priced.quantities() {
			deltas[productID] -= qty
		}
	}

	failedIDs, err := s.productRepo.AdjustStockBatch(ctx, deltas)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, insufficientStockError(failedIDs, priced.products)
	}

	sale.CustomerID = input.CustomerID
	sale.Customer = nil
	if input.SaleDate != nil {
		sale.SaleDate = input.SaleDate.UTC()
	}
	sale.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	sale.Status = status
	sale.Items = priced.items()
	priced.applyTotals(sale)

	if err := s.saleRepo.ReplaceWithItems(ctx, sale); err != nil {
		s.reverseStock(ctx, deltas, sale.InvoiceNo)
		return nil, err
	}
	if status != enum.SaleStatusCancelled {
		if err := s.settleAfterUpdate(ctx, sale, input.Status); err != nil {
			return nil, err
		}
	}

	updated, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	eventType := events.EventSaleUpdated
	if status == enum.SaleStatusCancelled {
		eventType = events.EventSaleCancelled
	}
	s.publish(ctx, eventType, updated)
	return updated, nil
}

// CancelSale restores stock and marks the sale cancelled
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == enum.SaleStatusCancelled {
		return nil, apperror.NewBadRequestError("Sale is already cancelled")
	}

	cancelled, err := s.saleRepo.Cancel(ctx, id, saleQuantities(sale))
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, apperror.NewBadRequestError("Sale is already cancelled")
	}
	sale.Status = enum.SaleStatusCancelled

	s.logger.Info("sale cancelled", zap.String("sale_id", id.String()), zap.String("invoice_no", sale.InvoiceNo))
	s.publish(ctx, events.EventSaleCancelled, sale)
	return sale, nil
}

// DeleteSale soft-deletes a sale, restoring stock unless it was cancelled
func (s *SaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.saleRepo.DeleteWithRestock(ctx, id, saleQuantities(sale))
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("Sale")
	}

	s.publish(ctx, events.EventSaleDeleted, sale)
	return nil
}

// GetSale retrieves a sale with items, products and customer
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

func (s *SaleService) publish(ctx context.Context, eventType events.EventType, sale *entity.Sale) {
	event, err := events.NewEvent(eventType, sale.ID, sale.UserID, sale)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to publish sale event",
			zap.String("event_type", string(eventType)),
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *SaleService) restoreStock(ctx context.Context, quantities map[uuid.UUID]int, invoiceNo string) {
	if err := s.productRepo.AtomicIncrementBatch(ctx, quantities); err != nil {
		s.logger.Error("failed to restore stock", zap.String("invoice_no", invoiceNo), zap.Error(err))
	}
}

func (s *SaleService) reverseStock(ctx context.Context, deltas map[uuid.UUID]int, invoiceNo string) {
	reversed := make(map[uuid.UUID]int, len(deltas))
	for id, delta := range deltas {
		reversed[id] = -delta
	}
	failedIDs, err := s.productRepo.AdjustStockBatch(ctx, reversed)
	if err != nil || len(failedIDs) > 0 {
		s.logger.Error("failed to reverse stock adjustment",
			zap.String("invoice_no", invoiceNo),
			zap.Int("failed_products", len(failedIDs)),
			zap.Error(err),
		)
	}
}

// recordTillPayment stores a completed payment taken at the till, so
// amount_paid stays equal to the sum of completed payments.
func (s *SaleService) recordTillPayment(ctx context.Context, sale *entity.Sale, amount int64, at time.Time) bool {
	if s.paymentRepo == nil || amount <= 0 {
		return false
	}
	payment := &entity.Payment{
		SaleID:        sale.ID,
		UserID:        sale.UserID,
		PaymentDate:   at,
		Amount:        amount,
		PaymentMethod: sale.PaymentMethod,
		Status:        enum.PaymentStatusCompleted,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("failed to record till payment", zap.String("sale_id", sale.ID.String()), zap.Error(err))
		return false
	}
	s.metrics.PaymentRecorded(payment.Status.String())
	return true
}

// settleAfterUpdate re-derives amount_paid and the status of an edited sale
// from its completed payments. An explicit Completed with a payment method
// takes the outstanding balance at the till first.
func (s *SaleService) settleAfterUpdate(ctx context.Context, sale *entity.Sale, requested *enum.SaleStatus) error {
	if s.paymentRepo == nil {
		return nil
	}
	paid, err := s.paymentRepo.SumCompletedBySale(ctx, sale.ID)
	if err != nil {
		return err
	}

	if requested != nil && *requested == enum.SaleStatusCompleted && sale.PaymentMethod != "" && paid < sale.FinalAmount {
		if s.recordTillPayment(ctx, sale, sale.FinalAmount-paid, time.Now().UTC()) {
			paid = sale.FinalAmount
		}
	}

	status := settledStatus(sale.Status, paid, sale.FinalAmount)
	if paid == sale.AmountPaid && status == sale.Status {
		return nil
	}
	if status != sale.Status {
		s.logger.Info("sale status settled after update",
			zap.String("sale_id", sale.ID.String()),
			zap.Int64("amount_paid_cents", paid),
			zap.String("status", status.String()),
		)
	}
	sale.AmountPaid = paid
	sale.Status = status
	return s.saleRepo.UpdatePayment(ctx, sale.ID, paid, status)
}

// settledStatus moves a pending sale to completed once paid in full, and a
// completed sale back to pending when it no longer is. Cancelled stays put.
func settledStatus(status enum.SaleStatus, paid, finalAmount int64) enum.SaleStatus {
	switch {
	case paid >= finalAmount && status == enum.SaleStatusPending:
		return enum.SaleStatusCompleted
	case paid < finalAmount && status == enum.SaleStatusCompleted:
		return enum.SaleStatusPending
	}
	return status
}

// settledAtTill reports whether a new sale is paid in full on creation
func settledAtTill(sale *entity.Sale) bool {
	return sale.Status == enum.SaleStatusCompleted && sale.PaymentMethod != ""
}

func saleQuantities(sale *entity.Sale) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

func insufficientStockError(failedIDs []uuid.UUID, products map[uuid.UUID]*entity.Product) error {
	names := make([]string, 0, len(failedIDs))
	for _, id := range failedIDs {
		if product, ok := products[id]; ok {
			names = append(names, product.ProductName)
		} else {
			names = append(names, id.String())
		}
	}
	sort.Strings(names)
	return apperror.NewAppError(http.StatusBadRequest, fmt.Sprintf("Insufficient stock for: %v", names))
}
