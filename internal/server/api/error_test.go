package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accounthub/accounthub/internal/authz"
)

func TestAbortAuthzError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "denial is 403",
			err:         authz.ErrForbidden,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name:        "wrapped denial is 403",
			err:         errors.Join(authz.ErrForbidden, errors.New("no membership")),
			wantStatus:  http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name:        "staff system-required stays a loud 500",
			err:         authz.ErrStaffSystemRequirement,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Authorization misconfiguration",
		},
		{
			name:        "infrastructure failure is 500, never 403",
			err:         errors.New("directory unavailable"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			AbortAuthzError(c, tt.err)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMessage)
		})
	}
}

func TestJSONError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	JSONError(c, http.StatusBadRequest, errors.New("missing business identifier"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"type":"Bad Request","message":"missing business identifier"}}`, w.Body.String())
}
