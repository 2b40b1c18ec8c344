package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// User is the read side of the identity directory. Leave code only needs the
// role and the reporting line.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;type:varchar(255);not null"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role      Role           `gorm:"column:role;type:varchar(20);not null;default:employee"`
	ManagerID *uuid.UUID     `gorm:"column:manager_id;type:uuid;index"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ReportsTo reports whether managerID is the user's direct manager.
func (u User) ReportsTo(managerID uuid.UUID) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}
