package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/accounthub/accounthub/internal/log"
)

// Recovery converts panics into a JSON 500 response instead of killing the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())),
				)

				AbortWithError(c, http.StatusInternalServerError, errors.New("Internal server error"))
			}
		}()

		c.Next()
	}
}
