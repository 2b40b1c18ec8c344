package leave

import (
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Leave struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:idx_leaves_user_dates,priority:1"`
	LeaveType balance.LeaveType `gorm:"column:leave_type;type:varchar(20);not null"`
	FromDate  time.Time         `gorm:"column:from_date;type:date;not null;index:idx_leaves_user_dates,priority:2"`
	ToDate    time.Time         `gorm:"column:to_date;type:date;not null;index:idx_leaves_user_dates,priority:3"`
	Days      int               `gorm:"column:days;not null"`
	// ReservedDays is what the ledger currently holds against this request.
	ReservedDays int    `gorm:"column:reserved_days;not null"`
	Reason       string `gorm:"column:reason;type:text;not null"`

	Status         Status     `gorm:"column:status;type:varchar(20);not null;index:idx_leaves_status"`
	ManagerComment *string    `gorm:"column:manager_comment;type:text"`
	ProcessedBy    *uuid.UUID `gorm:"column:processed_by;type:uuid"`
	ProcessedAt    *time.Time `gorm:"column:processed_at"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index:idx_leaves_deleted_at"`

	User *user.User `gorm:"foreignKey:UserID"`
}

func (Leave) TableName() string {
	return "leaves"
}

// Year is the ledger year the request is charged to.
func (l Leave) Year() int {
	return l.FromDate.Year()
}

// DaysBetween counts the calendar days of the closed range [from, to].
func DaysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours()/24) + 1
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
