package balanceerrors

import (
	"go-leave/internal/shared/apperror"
	"net/http"
)

// InsufficientDetails is attached to ErrInsufficientBalance.
type InsufficientDetails struct {
	LeaveType string `json:"leave_type"`
	Year      int    `json:"year"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)

	ErrBalanceRecordMissing = apperror.New(
		apperror.CodeBalanceRecordMissing,
		"Leave balance record not found",
		http.StatusNotFound,
	)

	ErrInvalidBalance = apperror.New(
		apperror.CodeValidation,
		"Balance must not be negative",
		http.StatusBadRequest,
	)

	ErrInvalidAmount = apperror.New(
		apperror.CodeValidation,
		"Amount must be positive",
		http.StatusBadRequest,
	)

	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"Leave type must be one of casual, sick, annual",
		http.StatusBadRequest,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeValidation,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrYearClosed = apperror.New(
		apperror.CodeInvalidState,
		"Leave year has been closed by the yearly reset",
		http.StatusConflict,
	)

	ErrInvalidYear = apperror.New(
		apperror.CodeValidation,
		"Invalid year",
		http.StatusBadRequest,
	)
)
