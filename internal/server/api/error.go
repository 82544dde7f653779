package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/objects"
)

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// AbortAuthzError maps engine failures to HTTP statuses: denials become 403,
// the staff/system-required configuration error stays a loud 500, and
// infrastructure failures are never coerced into 403.
func AbortAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrStaffSystemRequirement):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, objects.ErrorResponse{
			Error: objects.Error{
				Type:    http.StatusText(http.StatusInternalServerError),
				Message: "Authorization misconfiguration",
			},
		})
	case errors.Is(err, authz.ErrForbidden):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusForbidden, objects.ErrorResponse{
			Error: objects.Error{
				Type:    http.StatusText(http.StatusForbidden),
				Message: "Access denied",
			},
		})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, objects.ErrorResponse{
			Error: objects.Error{
				Type:    http.StatusText(http.StatusInternalServerError),
				Message: "Internal server error",
			},
		})
	}
}
