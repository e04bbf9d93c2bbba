package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts a task query to one owner. A nil owner selects the
// unowned tasks of a single-tenant deployment.
func OwnedBy(ownerID *uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ownerID == nil {
			return db.Where("tasks.owner_id IS NULL")
		}
		return db.Where("tasks.owner_id = ?", *ownerID)
	}
}
