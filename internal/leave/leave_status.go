package leave

import (
	leaveerrors "go-leave/internal/leave/errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(v string) (Status, bool) {
	switch s := Status(v); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, true
	}
	return "", false
}

// ParseDecision accepts the two outcomes a reviewer can choose.
func ParseDecision(v string) (Status, bool) {
	switch s := Status(v); s {
	case StatusApproved, StatusRejected:
		return s, true
	}
	return "", false
}

// Transition validates moving a request from one status to another.
// Pending requests may be approved or rejected. An approved request may only
// be rejected as a reversal.
func Transition(from, to Status, reversal bool) error {
	switch {
	case from == StatusPending && (to == StatusApproved || to == StatusRejected):
		return nil
	case from == StatusApproved && to == StatusRejected && reversal:
		return nil
	}
	return leaveerrors.ErrInvalidState.WithDetails(leaveerrors.StateDetails{
		Status: string(from),
		Target: string(to),
	})
}
