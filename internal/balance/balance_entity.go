package balance

import (
	"time"

	"github.com/google/uuid"
)

type LeaveType string

const (
	TypeCasual LeaveType = "casual"
	TypeSick   LeaveType = "sick"
	TypeAnnual LeaveType = "annual"
)

// LeaveTypes is the closed set of leave categories, in display order.
var LeaveTypes = []LeaveType{TypeCasual, TypeSick, TypeAnnual}

func ParseLeaveType(s string) (LeaveType, bool) {
	for _, t := range LeaveTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Allowances maps each leave type to the days granted when a year row is
// first created.
type Allowances map[LeaveType]int

func DefaultAllowances() Allowances {
	return Allowances{
		TypeCasual: 12,
		TypeSick:   10,
		TypeAnnual: 15,
	}
}

// LeaveBalance holds the remaining days for one (user, type, year).
type LeaveBalance struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_leave_balance_key,priority:1"`
	LeaveType LeaveType `gorm:"column:leave_type;type:varchar(20);not null;uniqueIndex:uq_leave_balance_key,priority:2"`
	Year      int       `gorm:"column:year;not null;uniqueIndex:uq_leave_balance_key,priority:3"`
	Balance   int       `gorm:"column:balance;not null;check:chk_leave_balance_non_negative,balance >= 0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type EntryReason string

const (
	ReasonSeed      EntryReason = "seed"
	ReasonReserve   EntryReason = "leave_reserve"
	ReasonCommit    EntryReason = "leave_commit"
	ReasonRelease   EntryReason = "leave_release"
	ReasonReversal  EntryReason = "leave_reversal"
	ReasonAdminSet  EntryReason = "admin_set"
	ReasonYearReset EntryReason = "year_reset"
)

// Entry is one line of the balance journal. Summing Delta for a key gives
// its current Balance.
type Entry struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID   `gorm:"column:user_id;type:uuid;not null;index:idx_balance_entry_key,priority:1"`
	LeaveType    LeaveType   `gorm:"column:leave_type;type:varchar(20);not null;index:idx_balance_entry_key,priority:2"`
	Year         int         `gorm:"column:year;not null;index:idx_balance_entry_key,priority:3"`
	Delta        int         `gorm:"column:delta;not null"`
	BalanceAfter int         `gorm:"column:balance_after;not null"`
	Reason       EntryReason `gorm:"column:reason;type:varchar(30);not null"`
	LeaveID      *uuid.UUID  `gorm:"column:leave_id;type:uuid;index"`
	ActorID      *uuid.UUID  `gorm:"column:actor_id;type:uuid"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "leave_balance_entries"
}

// Movement tags a balance change for the journal.
type Movement struct {
	Reason  EntryReason
	LeaveID *uuid.UUID
	ActorID *uuid.UUID
}
