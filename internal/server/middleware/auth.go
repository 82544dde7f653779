package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/server/biz"
)

// ExtractBearerToken pulls the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("authorization header must be a bearer token")
	}

	return token, nil
}

// WithClaimsAuth verifies the bearer token, classifies the claim set into a
// principal and stores it on the request context. Malformed claims are a 401:
// an upstream token-verification bug, never silently downgraded to anonymous.
func WithClaimsAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c.Request)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		claims, err := auth.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("Failed to validate token"))
			}

			return
		}

		principal, err := authz.Classify(claims)
		if err != nil {
			if errors.Is(err, authz.ErrMalformedClaims) {
				AbortWithError(c, http.StatusUnauthorized, err)
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("Failed to classify principal"))
			}

			return
		}

		ctx, err := authz.WithPrincipal(c.Request.Context(), principal)
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, fmt.Errorf("principal conflict: %w", err))
			return
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
