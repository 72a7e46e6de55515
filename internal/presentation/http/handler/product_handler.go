package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posadmin-api/internal/application/service"
	"github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/request"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// productInput maps the request onto service input. Blank category and
// supplier IDs are treated as not set.
func productInput(c *gin.Context, req *request.ProductRequest) (*service.ProductInput, bool) {
	categoryID, catErr := optionalUUID("category_id", req.CategoryID)
	supplierID, supErr := optionalUUID("supplier_id", req.SupplierID)
	if errs := fieldErrors(catErr, supErr); len(errs) > 0 {
		response.ValidationError(c, errs)
		return nil, false
	}

	return &service.ProductInput{
		CategoryID:   categoryID,
		SupplierID:   supplierID,
		Name:         req.ProductName,
		Price:        req.Price,
		CostPrice:    req.CostPrice,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		Barcode:      req.Barcode,
		Description:  req.Description,
	}, true
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	pag, sort := listParams(filter.ListRequest)

	params := &repository.ProductFilterParams{
		Pagination: pag,
		Search:     filter.Search,
		CategoryID: queryUUID(filter.CategoryID),
		SupplierID: queryUUID(filter.SupplierID),
		LowStock:   filter.LowStock,
		Sort:       sort,
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := productInput(c, &req)
	if !ok {
		return
	}
	input.UserID = userID

	product, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := productInput(c, &req)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}
