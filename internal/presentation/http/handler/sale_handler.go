package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/application/service"
	"github.com/sangkips/posadmin-api/internal/domain/enum"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/request"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/response"
	"github.com/sangkips/posadmin-api/pkg/apperror"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// saleInput converts a request into service input, writing a 422 on
// unparsable IDs, dates or out of range quantities.
func saleInput(c *gin.Context, userID uuid.UUID, req *request.SaleRequest) (*service.SaleInput, bool) {
	customerID, custErr := optionalUUID("customer_id", req.CustomerID)
	saleDate, dateErr := optionalTime("sale_date", req.SaleDate)
	errs := fieldErrors(custErr, dateErr)

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items.%d.", i)

		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			errs = append(errs, apperror.FieldError{Field: prefix + "product_id", Message: "Must be a valid UUID"})
		}
		quantity, msg := service.WholeQuantity(item.Quantity)
		if msg != "" {
			errs = append(errs, apperror.FieldError{Field: prefix + "quantity", Message: msg})
		}

		items = append(items, service.SaleItemInput{
			ProductID: productID,
			Quantity:  quantity,
			Price:     item.Price,
			Discount:  item.Discount,
		})
	}

	if len(errs) > 0 {
		response.ValidationError(c, errs)
		return nil, false
	}

	return &service.SaleInput{
		UserID:        userID,
		CustomerID:    customerID,
		SaleDate:      saleDate,
		Tax:           req.Tax,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Items:         items,
	}, true
}

// List handles listing sales
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	pag, sort := listParams(filter.ListRequest)

	params := &repository.SaleFilterParams{
		Pagination: pag,
		Search:     filter.Search,
		CustomerID: queryUUID(filter.CustomerID),
		Sort:       sort,
	}

	if filter.Status != "" {
		status, err := enum.ParseSaleStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status")
			return
		}
		params.Status = &status
	}

	var ok bool
	if params.StartDate, ok = queryDate(filter.StartDate); !ok {
		response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	if params.EndDate, ok = queryDate(filter.EndDate); !ok {
		response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", result)
}

// Get handles getting a sale with its items, products and customer
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Quote prices a sale without saving it
func (h *SaleHandler) Quote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.SaleRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := saleInput(c, userID, &req)
	if !ok {
		return
	}

	quote, err := h.saleService.QuoteSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale priced successfully", quote)
}

// Create handles creating a sale
func (h *SaleHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.SaleRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := saleInput(c, userID, &req)
	if !ok {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}

// Update handles replacing a sale's header and items
func (h *SaleHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.SaleRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := saleInput(c, userID, &req)
	if !ok {
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale updated successfully", sale)
}

// Cancel handles cancelling a sale
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale cancelled successfully", sale)
}

// Delete handles deleting a sale
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale deleted successfully", nil)
}
