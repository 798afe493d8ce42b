package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// allowed sort columns, whitelisted against injection
var allowedSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"percentage": true,
	"score":      true,
}

// applyPaginationAndSort applies a whitelisted ORDER BY plus LIMIT/OFFSET.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
