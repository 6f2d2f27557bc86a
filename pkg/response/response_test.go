package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/atriumhq/service-reservation/pkg/domain"
)

func statusFor(err error) int {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, err)
	return w.Code
}

func TestError_MapsDomainErrorsToStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("bad input"), http.StatusBadRequest},
		{domain.NewNotFoundError("Booking", "abc"), http.StatusNotFound},
		{domain.NewInvalidStateError("Completed", "confirm"), http.StatusUnprocessableEntity},
		{domain.NewConflictError("modified by another session"), http.StatusConflict},
		{domain.NewForbiddenError("not yours"), http.StatusForbidden},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, statusFor(tc.err), "%v", tc.err)
	}
}

func TestError_UnwrapsWrappedDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", domain.NewConflictError("stale"))
	assert.Equal(t, http.StatusConflict, statusFor(wrapped))
}
