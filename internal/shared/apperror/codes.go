package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeTooMany      = "TOO_MANY_REQUESTS"
	CodeProcessing   = "PROCESSING"

	// Leave and balance rule violations
	CodeOverlapConflict      = "OVERLAP_CONFLICT"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeBalanceRecordMissing = "BALANCE_RECORD_MISSING"
	CodeExceedsMaxDuration   = "EXCEEDS_MAX_DURATION"
	CodeTeamCapacityExceeded = "TEAM_CAPACITY_EXCEEDED"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
