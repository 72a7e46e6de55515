package request

// ListRequest holds the query parameters shared by every list endpoint
type ListRequest struct {
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// CategoryRequest represents a category create or update request
type CategoryRequest struct {
	CategoryName *string `json:"category_name" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
}

// SupplierRequest represents a supplier create or update request
type SupplierRequest struct {
	SupplierName  *string `json:"supplier_name" binding:"omitempty,max=255"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,max=255"`
	Address       *string `json:"address"`
}

// ProductRequest represents a product create or update request.
// category_id and supplier_id accept an empty string for "none".
type ProductRequest struct {
	ProductName  *string  `json:"product_name" binding:"omitempty,max=255"`
	CategoryID   *string  `json:"category_id"`
	SupplierID   *string  `json:"supplier_id"`
	Price        *float64 `json:"price"`
	CostPrice    *float64 `json:"cost_price"`
	Stock        *int     `json:"stock"`
	ReorderLevel *int     `json:"reorder_level"`
	Barcode      *string  `json:"barcode" binding:"omitempty,max=100"`
	Description  *string  `json:"description"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	ListRequest
	CategoryID string `form:"category_id"`
	SupplierID string `form:"supplier_id"`
	LowStock   bool   `form:"low_stock"`
}

// CustomerRequest represents a customer create or update request
type CustomerRequest struct {
	CustomerName  *string `json:"customer_name" binding:"omitempty,max=255"`
	Email         *string `json:"email" binding:"omitempty,max=255"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Address       *string `json:"address"`
	LoyaltyPoints *int    `json:"loyalty_points"`
}
