package database

import (
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/utils"
)

// Paginate applies limit/offset pagination to a GORM query. A non-positive
// limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit > 0 {
			db = db.Limit(params.Limit)
		}
		if params.Offset > 0 {
			db = db.Offset(params.Offset)
		}
		return db
	}
}
