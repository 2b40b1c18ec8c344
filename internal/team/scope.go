package team

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope restricts a query on a table with a user_id column to rows owned by
// the manager's active direct reports. The table must be set on db first.
func Scope(table string, managerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN users ON users.id = "+table+".user_id").
			Where("users.manager_id = ? AND users.deleted_at IS NULL", managerID)
	}
}
