package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/application/service"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/request"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/response"
)

// DraftHandler exposes the server-side sale calculator
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// draftScope resolves the caller and the :id parameter
func draftScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := pathID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// Create opens an empty draft
func (h *DraftHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateDraftRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	customerID, fieldErr := optionalUUID("customer_id", req.CustomerID)
	if fieldErr != nil {
		response.ValidationError(c, fieldErrors(fieldErr))
		return
	}

	draft, err := h.draftService.CreateDraft(c.Request.Context(), &service.CreateDraftInput{
		UserID:        userID,
		CustomerID:    customerID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Draft created successfully", draft)
}

// Get returns the draft lines and totals
func (h *DraftHandler) Get(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	draft, err := h.draftService.GetDraft(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft retrieved successfully", draft)
}

// AddItem appends an empty line
func (h *DraftHandler) AddItem(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	draft, index, err := h.draftService.AddItem(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Line item added", gin.H{
		"index": index,
		"draft": draft,
	})
}

// UpdateItem edits a line
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}
	index, ok := pathIndex(c)
	if !ok {
		return
	}

	var req request.DraftItemRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.draftService.UpdateItem(c.Request.Context(), userID, id, index, &service.DraftItemPatch{
		ProductID: req.ProductID,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Discount:  req.Discount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Line item updated", draft)
}

// RemoveItem deletes a line; later lines shift down
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}
	index, ok := pathIndex(c)
	if !ok {
		return
	}

	draft, err := h.draftService.RemoveItem(c.Request.Context(), userID, id, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Line item removed", draft)
}

// SetTax sets the tax percent
func (h *DraftHandler) SetTax(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	var req request.DraftTaxRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.draftService.SetTax(c.Request.Context(), userID, id, *req.Tax)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax updated", draft)
}

// Reset clears lines and tax
func (h *DraftHandler) Reset(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	draft, err := h.draftService.ResetDraft(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft reset", draft)
}

// Discard drops the draft
func (h *DraftHandler) Discard(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	if err := h.draftService.DiscardDraft(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft discarded", nil)
}

// Submit turns the draft into a sale
func (h *DraftHandler) Submit(c *gin.Context) {
	userID, id, ok := draftScope(c)
	if !ok {
		return
	}

	var req request.SubmitDraftRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	customerID, custErr := optionalUUID("customer_id", req.CustomerID)
	saleDate, dateErr := optionalTime("sale_date", req.SaleDate)
	if errs := fieldErrors(custErr, dateErr); len(errs) > 0 {
		response.ValidationError(c, errs)
		return
	}

	sale, err := h.draftService.SubmitDraft(c.Request.Context(), userID, id, &service.SubmitDraftInput{
		CustomerID:    customerID,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		SaleDate:      saleDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}
