package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/request"
	"github.com/sangkips/posadmin-api/internal/presentation/http/dto/response"
	"github.com/sangkips/posadmin-api/pkg/apperror"
	"github.com/sangkips/posadmin-api/pkg/pagination"
)

// Context keys set by the auth middleware
const (
	ContextUserID      = "user_id"
	ContextUsername    = "username"
	ContextRoles       = "user_roles"
	ContextPermissions = "user_permissions"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(ContextUserID)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// requireUser writes a 401 and returns false when no user is authenticated
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// pathID parses the :id route parameter
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body and writes a 400 on malformed input
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// listParams converts the shared list query into pagination and sort params
func listParams(q request.ListRequest) (*pagination.PaginationParams, pagination.SortParams) {
	params := &pagination.PaginationParams{Page: q.Page, PerPage: q.PerPage}
	params.Validate()
	return params, pagination.ParseSort(q.SortBy, q.SortOrder)
}

// optionalUUID parses an optional ID field. Blank values mean "not set".
func optionalUUID(field string, raw *string) (*uuid.UUID, *apperror.FieldError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, &apperror.FieldError{Field: field, Message: "Must be a valid UUID"}
	}
	return &id, nil
}

// optionalTime accepts either a YYYY-MM-DD date or an RFC 3339 timestamp
func optionalTime(field string, raw *string) (*time.Time, *apperror.FieldError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	return nil, &apperror.FieldError{Field: field, Message: "Must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}
}

// queryUUID parses an optional UUID query filter; invalid values are ignored
func queryUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// queryDate parses an optional YYYY-MM-DD query filter
func queryDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// pathIndex parses a line index; a non-integer index is a 400
func pathIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Line item index must be an integer")
		return 0, false
	}
	return index, true
}

// fieldErrors collects the non-nil errors of parsed fields
func fieldErrors(errs ...*apperror.FieldError) []apperror.FieldError {
	var out []apperror.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
