package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"inys-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		err  *apperror.AppError
		code int
	}{
		{"bad request", apperror.BadRequest("x"), http.StatusBadRequest},
		{"misconfigured", apperror.Misconfigured("x"), http.StatusBadRequest},
		{"unauthorized", apperror.Unauthorized("x"), http.StatusUnauthorized},
		{"forbidden", apperror.Forbidden("x"), http.StatusForbidden},
		{"not found", apperror.NotFound("x"), http.StatusNotFound},
		{"conflict", apperror.Conflict("x"), http.StatusConflict},
		{"too many", apperror.TooManyRequests("x"), http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, "x", tc.err.Error())
		})
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperror.Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.Code)
	assert.Equal(t, "Internal Server Error", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *apperror.AppError
	assert.True(t, errors.As(error(err), &appErr))
}
