package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestAppError_WithDetails(t *testing.T) {
	base := apperror.New(apperror.CodeConflict, "conflict", http.StatusConflict)
	withDetails := base.WithDetails(map[string]any{"id": "x"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.True(t, errors.Is(withDetails, base))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", withDetails), base))
	assert.False(t, errors.Is(withDetails, apperror.ErrNotFound))
}

func TestToHTTP(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		err := apperror.ErrNotFound.WithDetails("leave")
		httpErr := apperror.ToHTTP(fmt.Errorf("outer: %w", err))

		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, apperror.CodeNotFound, httpErr.Code)
		assert.Equal(t, "leave", httpErr.Details)
	})

	t.Run("plain error is internal", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "boom")
	})
}

func TestFromRepository(t *testing.T) {
	notFound := apperror.New(apperror.CodeNotFound, "leave not found", http.StatusNotFound)

	assert.NoError(t, apperror.FromRepository(nil, notFound))
	assert.Same(t, notFound, apperror.FromRepository(gorm.ErrRecordNotFound, notFound))
	assert.Same(t, apperror.ErrNotFound, apperror.FromRepository(gorm.ErrRecordNotFound, nil))

	passthrough := apperror.ErrForbidden
	assert.Same(t, passthrough, apperror.FromRepository(passthrough, notFound))

	err := apperror.FromRepository(context.DeadlineExceeded, notFound)
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	err = apperror.FromRepository(&pgconn.PgError{Code: "23505"}, notFound)
	assert.True(t, errors.Is(err, apperror.ErrDuplicateRecord))

	err = apperror.FromRepository(&pgconn.PgError{Code: "23514"}, notFound)
	assert.Equal(t, apperror.CodeValidation, apperror.ToHTTP(err).Code)

	err = apperror.FromRepository(&pgconn.PgError{Code: "57014"}, notFound)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.ToHTTP(err).Status)
}
