package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "gojoyas/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{apperror.NewValidationError("capacidade inválida"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperror.NewUnauthorizedError("token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperror.NewForbiddenError("admin"), http.StatusForbidden, "FORBIDDEN"},
		{apperror.NewNotFoundError("armazém"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.NewConflictError("versão"), http.StatusConflict, "CONFLICT"},
		{apperror.NewDBError("falha", errors.New("conn reset")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("qualquer"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, c := range cases {
		status, category, _ := apperror.MapToHTTPStatus(c.err)
		assert.Equal(t, c.status, status)
		assert.Equal(t, c.category, category)
	}
}

func TestMapToHTTPStatus_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", apperror.NewNotFoundError("despesa"))

	status, category, msg := apperror.MapToHTTPStatus(wrapped)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", category)
	assert.Contains(t, msg, "despesa")
}

func TestInternalError_Unwrap(t *testing.T) {
	root := errors.New("timeout")
	err := apperror.NewDBError("Falha ao buscar", root)

	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "(DB)")
}
