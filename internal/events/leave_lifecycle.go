package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveApplied   = "leave_applied"
	LeaveCancelled = "leave_cancelled"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveReversed  = "leave_reversed"
)

type LeaveEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	UserID     string    `json:"user_id"`
	ActorID    string    `json:"actor_id"`
	LeaveType  string    `json:"leave_type"`
	FromDate   string    `json:"from_date"`
	ToDate     string    `json:"to_date"`
	Days       int       `json:"days"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
