package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLeaveApply       = "leave_application"
	ActionLeaveCancel      = "leave_cancellation"
	ActionLeaveApprove     = "leave_approved"
	ActionLeaveReject      = "leave_rejected"
	ActionLeaveReverse     = "leave_reversed"
	ActionBalanceUpdate    = "balance_update"
	ActionBalanceYearReset = "balance_year_reset"
	ActionServerShutdown   = "server_shutdown"
)

// Log is an append-only audit row. Metadata holds a JSON object.
type Log struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ActionBy     uuid.UUID `gorm:"column:action_by;type:uuid;not null;index"`
	ActionType   string    `gorm:"column:action_type;type:varchar(50);not null;index"`
	ActionTarget string    `gorm:"column:action_target;type:varchar(100);not null"`
	Details      string    `gorm:"column:details;type:text"`
	Metadata     string    `gorm:"column:metadata;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Log) TableName() string {
	return "audit_logs"
}
