package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewForbidden("no")
	converted := ToDomainError(original)

	require.NotNil(t, converted)
	assert.Equal(t, CodeForbidden, converted.Code)
	assert.Equal(t, http.StatusForbidden, converted.HTTPStatus)
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	converted := ToDomainError(pgx.ErrNoRows)

	require.NotNil(t, converted)
	assert.Equal(t, CodeNotFound, converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	converted := ToDomainError(cause)

	require.NotNil(t, converted)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	assert.ErrorIs(t, converted, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestInvalidTransitionAndConflictCodes(t *testing.T) {
	transition := ToDomainError(NewInvalidTransition("cannot move", nil))
	assert.Equal(t, CodeInvalidTransition, transition.Code)
	assert.Equal(t, http.StatusBadRequest, transition.HTTPStatus)

	conflict := ToDomainError(NewConflict("raced", nil))
	assert.Equal(t, CodeConflict, conflict.Code)
	assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("root")
	wrapped := NewInternalError(cause)
	assert.ErrorIs(t, wrapped, cause)
}
