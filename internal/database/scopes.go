package database

import "gorm.io/gorm"

// Paginate applies page-based pagination to a query. Out-of-range values
// leave the query unpaginated.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 || limit < 1 {
			return db
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
