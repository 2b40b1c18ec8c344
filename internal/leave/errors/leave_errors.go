package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

type OverlapDetails struct {
	ConflictingID string `json:"conflicting_id"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
}

type DurationDetails struct {
	Days int `json:"days"`
	Max  int `json:"max"`
}

type CapacityDetails struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type StateDetails struct {
	Status string `json:"status"`
	Target string `json:"target,omitempty"`
}

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeValidation,
		"Invalid user ID",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeValidation,
		"Invalid leave ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"to_date must not be before from_date",
		http.StatusBadRequest,
	)
	ErrBackdatedLeave = apperror.New(
		apperror.CodeValidation,
		"from_date must not be in the past",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeValidation,
		"reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"Leave type must be one of casual, sick, annual",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeValidation,
		"Decision must be either approved or rejected",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"Invalid status value",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeValidation,
		"Month must be between 1-12 and requires a year",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeValidation,
		"Invalid year",
		http.StatusBadRequest,
	)

	ErrOverlapConflict = apperror.New(
		apperror.CodeOverlapConflict,
		"Leave overlaps an existing request",
		http.StatusConflict,
	)
	ErrExceedsMaxDuration = apperror.New(
		apperror.CodeExceedsMaxDuration,
		"Leave exceeds the maximum duration",
		http.StatusUnprocessableEntity,
	)
	ErrTeamCapacityExceeded = apperror.New(
		apperror.CodeTeamCapacityExceeded,
		"Too many team members are already on leave in this period",
		http.StatusConflict,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"Leave request is not in a state that allows this operation",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrAdminRequired = apperror.New(
		apperror.CodeForbidden,
		"Only administrators can override decisions",
		http.StatusForbidden,
	)
)
