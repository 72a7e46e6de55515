package repository

import (
	"strings"

	"github.com/sangkips/posadmin-api/pkg/pagination"
	"gorm.io/gorm"
)

// SearchScope matches term case-insensitively against any of the columns.
// LOWER/LIKE is used instead of ILIKE so the same query runs on SQLite.
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// SortScope orders by a whitelisted column. Unknown fields use the fallback,
// which must itself be a trusted ORDER BY expression.
func SortScope(sort pagination.SortParams, allowed map[string]string, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := allowed[sort.Field]
		if !ok {
			return db.Order(fallback)
		}
		direction := " ASC"
		if sort.Desc {
			direction = " DESC"
		}
		return db.Order(column + direction)
	}
}

// Paginate validates params and applies offset and limit
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			params = pagination.DefaultPagination()
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}
