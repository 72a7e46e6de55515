package service

import (
	"context"
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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles payments and keeps each sale's paid amount in sync
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	saleRepo    repository.SaleRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	saleRepo repository.SaleRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		saleRepo:    saleRepo,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// PaymentInput carries create and update fields. On update nil fields are left unchanged.
type PaymentInput struct {
	UserID               uuid.UUID
	SaleID               *uuid.UUID
	PaymentDate          *time.Time
	Amount               *decimal.Decimal
	PaymentMethod        *string
	TransactionReference *string
	Status               *enum.PaymentStatus
}

func (in *PaymentInput) validate(create bool) error {
	var fieldErrors []apperror.FieldError
	if create && in.SaleID == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sale_id", Message: "This field is required"})
	}
	if create && in.Amount == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "This field is required"})
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "Must be greater than 0"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreatePayment records a payment against a sale
func (s *PaymentService) CreatePayment(ctx context.Context, input *PaymentInput) (*entity.Payment, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}
	if _, err := s.payableSale(ctx, *input.SaleID); err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		SaleID:               *input.SaleID,
		UserID:               input.UserID,
		PaymentDate:          time.Now().UTC(),
		Amount:               salecalc.ToCents(*input.Amount),
		TransactionReference: input.TransactionReference,
		Status:               enum.PaymentStatusPending,
	}
	if input.PaymentDate != nil {
		payment.PaymentDate = input.PaymentDate.UTC()
	}
	if input.PaymentMethod != nil {
		payment.PaymentMethod = strings.TrimSpace(*input.PaymentMethod)
	}
	if input.Status != nil {
		payment.Status = *input.Status
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, payment.SaleID); err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(payment.Status.String())
	s.publish(ctx, payment)
	return s.GetPayment(ctx, payment.ID)
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

// ListPayments lists payments with filtering
func (s *PaymentService) ListPayments(ctx context.Context, params *repository.PaymentFilterParams) (*pagination.PaginatedResult[entity.Payment], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(payments, pag), nil
}

// UpdatePayment updates a payment and reconciles the affected sales
func (s *PaymentService) UpdatePayment(ctx context.Context, id uuid.UUID, input *PaymentInput) (*entity.Payment, error) {
	if err := input.validate(false); err != nil {
		return nil, err
	}

	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	previousSaleID := payment.SaleID

	if input.SaleID != nil && *input.SaleID != payment.SaleID {
		if _, err := s.payableSale(ctx, *input.SaleID); err != nil {
			return nil, err
		}
		payment.SaleID = *input.SaleID
	}
	if input.PaymentDate != nil {
		payment.PaymentDate = input.PaymentDate.UTC()
	}
	if input.Amount != nil {
		payment.Amount = salecalc.ToCents(*input.Amount)
	}
	if input.PaymentMethod != nil {
		payment.PaymentMethod = strings.TrimSpace(*input.PaymentMethod)
	}
	if input.TransactionReference != nil {
		payment.TransactionReference = input.TransactionReference
	}
	if input.Status != nil {
		payment.Status = *input.Status
	}
	payment.Sale = nil

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if previousSaleID != payment.SaleID {
		if err := s.reconcile(ctx, previousSaleID); err != nil {
			return nil, err
		}
	}
	if err := s.reconcile(ctx, payment.SaleID); err != nil {
		return nil, err
	}

	s.publish(ctx, payment)
	return s.GetPayment(ctx, payment.ID)
}

// DeletePayment soft-deletes a payment and reconciles its sale
func (s *PaymentService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.reconcile(ctx, payment.SaleID)
}

// payableSale returns the sale if payments may be recorded against it
func (s *PaymentService) payableSale(ctx context.Context, saleID uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.Status == enum.SaleStatusCancelled {
		return nil, apperror.NewBadRequestError("Payments cannot be recorded against a cancelled sale")
	}
	return sale, nil
}

// reconcile sets the sale's paid amount to the sum of its completed payments
// and moves it between pending and completed accordingly. Cancelled and
// deleted sales are left alone.
func (s *PaymentService) reconcile(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil || sale.Status == enum.SaleStatusCancelled {
		return nil
	}

	paid, err := s.paymentRepo.SumCompletedBySale(ctx, saleID)
	if err != nil {
		return err
	}

	status := settledStatus(sale.Status, paid, sale.FinalAmount)

	if paid == sale.AmountPaid && status == sale.Status {
		return nil
	}

	s.logger.Info("sale payment reconciled",
		zap.String("sale_id", saleID.String()),
		zap.Int64("amount_paid_cents", paid),
		zap.String("status", status.String()),
	)
	return s.saleRepo.UpdatePayment(ctx, saleID, paid, status)
}

func (s *PaymentService) publish(ctx context.Context, payment *entity.Payment) {
	event, err := events.NewEvent(events.EventPaymentRecorded, payment.SaleID, payment.UserID, payment)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}
