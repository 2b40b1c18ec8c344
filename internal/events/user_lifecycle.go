package events

import "time"

const UserLifecycleTopic = "hr.user.lifecycle.v1"

const UserCreated = "user_created"

type UserCreatedEvent struct {
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
