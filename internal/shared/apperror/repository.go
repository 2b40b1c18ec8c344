package apperror

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateRecord = New(
		CodeConflict,
		"Record already exists",
		http.StatusConflict,
	)
	ErrConstraintViolated = New(
		CodeValidation,
		"Value violates a storage constraint",
		http.StatusBadRequest,
	)
)

// FromRepository classifies a persistence error. AppErrors pass through,
// record-not-found becomes notFound, integrity violations keep their meaning
// and every other failure (timeouts, dropped connections, lock waits) is
// reported as Unavailable so the caller may retry.
func FromRepository(err error, notFound *AppError) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound != nil {
			return notFound
		}
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Wrap(err, ErrDuplicateRecord.Code, ErrDuplicateRecord.Message, ErrDuplicateRecord.HTTPStatus)
		case "23514":
			return Wrap(err, ErrConstraintViolated.Code, ErrConstraintViolated.Message, ErrConstraintViolated.HTTPStatus)
		}
	}

	return Unavailable(err)
}

// Unavailable wraps err as a retryable storage failure.
func Unavailable(err error) error {
	return Wrap(err, ErrUnavailable.Code, ErrUnavailable.Message, ErrUnavailable.HTTPStatus)
}
