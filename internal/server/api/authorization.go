package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/server/biz"
)

type AuthorizationHandlersParams struct {
	fx.In

	AuthorizationService *biz.AuthorizationService
	Engine               *authz.Engine
}

func NewAuthorizationHandlers(params AuthorizationHandlersParams) *AuthorizationHandlers {
	return &AuthorizationHandlers{
		AuthorizationService: params.AuthorizationService,
		Engine:               params.Engine,
	}
}

type AuthorizationHandlers struct {
	AuthorizationService *biz.AuthorizationService
	Engine               *authz.Engine
}

// GetEntityAuthorizations returns the caller's effective permissions on one
// business entity. "No access" is a 200 with a null membership, not a 403.
func (h *AuthorizationHandlers) GetEntityAuthorizations(c *gin.Context) {
	ctx := c.Request.Context()
	principal := authz.MustGetPrincipal(ctx)

	businessIdentifier := c.Param("business_identifier")
	if businessIdentifier == "" {
		JSONError(c, http.StatusBadRequest, errors.New("missing business identifier"))
		return
	}

	authorization, err := h.AuthorizationService.GetUserAuthorizationsForEntity(ctx, principal, businessIdentifier)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, authorization)
}

// GetAccountAuthorizations returns the caller's membership and capabilities on
// an account, gated by the account's product subscription.
func (h *AuthorizationHandlers) GetAccountAuthorizations(c *gin.Context) {
	ctx := c.Request.Context()
	principal := authz.MustGetPrincipal(ctx)

	orgID, err := strconv.Atoi(c.Param("account_id"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid account id"))
		return
	}

	productCode := c.DefaultQuery("product_code", "BUSINESS")

	authorization, err := h.AuthorizationService.GetAccountAuthorizationsForOrg(ctx, principal, orgID, productCode)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, authorization)
}

// GetProductAuthorizations returns the caller's per-product capability list on
// an account.
func (h *AuthorizationHandlers) GetProductAuthorizations(c *gin.Context) {
	ctx := c.Request.Context()
	principal := authz.MustGetPrincipal(ctx)

	orgID, err := strconv.Atoi(c.Param("account_id"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid account id"))
		return
	}

	productCode := c.Param("product_code")

	authorization, err := h.AuthorizationService.GetAccountAuthorizationsForProduct(ctx, principal, orgID, productCode)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, authorization)
}

// GetAccountProducts lists the account's active product subscriptions.
func (h *AuthorizationHandlers) GetAccountProducts(c *gin.Context) {
	ctx := c.Request.Context()
	principal := authz.MustGetPrincipal(ctx)

	orgID, err := strconv.Atoi(c.Param("account_id"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid account id"))
		return
	}

	products, err := h.AuthorizationService.GetAccountProducts(ctx, principal, orgID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetUserAuthorizations returns the bulk per-org authorization view for a
// subject. Callers may read their own view; anything else requires staff.
func (h *AuthorizationHandlers) GetUserAuthorizations(c *gin.Context) {
	ctx := c.Request.Context()
	principal := authz.MustGetPrincipal(ctx)

	subjectID := c.Param("sub")
	if subjectID == "" {
		JSONError(c, http.StatusBadRequest, errors.New("missing subject id"))
		return
	}

	if subjectID != principal.SubjectID() {
		err := h.Engine.CheckAuth(ctx, principal, authz.Requirement{
			OneOf: []authz.Role{authz.RoleStaff},
		})
		if err != nil {
			AbortAuthzError(c, err)
			return
		}
	}

	authorizations, err := h.AuthorizationService.GetUserAuthorizations(ctx, subjectID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, authorizations)
}
