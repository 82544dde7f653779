package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/server/biz"
)

type AuthHandlersParams struct {
	fx.In

	AuthService *biz.AuthService
}

func NewAuthHandlers(params AuthHandlersParams) *AuthHandlers {
	return &AuthHandlers{
		AuthService: params.AuthService,
	}
}

type AuthHandlers struct {
	AuthService *biz.AuthService
}

type PasscodeLoginRequest struct {
	BusinessIdentifier string `json:"businessIdentifier" binding:"required"`
	Passcode           string `json:"passcode"           binding:"required"`
}

type PasscodeLoginResponse struct {
	Token string `json:"token"`
}

// PasscodeLogin authenticates a legacy entity passcode and issues a bearer
// token carrying the passcode principal.
func (h *AuthHandlers) PasscodeLogin(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req PasscodeLoginRequest
	)

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	principal, err := h.AuthService.AuthenticatePasscode(ctx, req.BusinessIdentifier, req.Passcode)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidPasscode) {
			JSONError(c, http.StatusUnauthorized, errors.New("Invalid business identifier or passcode"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))

		return
	}

	token, err := h.AuthService.GeneratePasscodeToken(ctx, principal)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, PasscodeLoginResponse{Token: token})
}
