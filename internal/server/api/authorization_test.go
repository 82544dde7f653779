package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/directory"
	"github.com/accounthub/accounthub/internal/objects"
	"github.com/accounthub/accounthub/internal/server/biz"
)

// setupAuthorizationRouter wires the handlers over a seeded in-memory
// directory, with a principal injected directly into the request context in
// place of the token middleware.
func setupAuthorizationRouter(t *testing.T, principal *authz.PrincipalContext) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := directory.NewMemoryStore()
	store.AddMembership(directory.Membership{UserID: "alice", OrgID: 1, Type: directory.MembershipTypeAdmin, Status: directory.MembershipStatusActive})
	store.AddEntity(directory.Entity{ID: 10, BusinessIdentifier: "CP0001234", Name: "Shared Coop"})
	store.AddAffiliation(directory.Affiliation{EntityID: 10, OrgID: 1})
	store.AddSubscription(directory.ProductSubscription{OrgID: 1, ProductCode: "BUSINESS", Status: directory.SubscriptionStatusActive})

	handlers := NewAuthorizationHandlers(AuthorizationHandlersParams{
		AuthorizationService: biz.NewAuthorizationService(biz.AuthorizationServiceParams{
			Memberships:  store,
			Affiliations: store,
			Products:     store,
		}),
		Engine: authz.NewEngine(store, store, store),
	})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx, err := authz.WithPrincipal(c.Request.Context(), principal)
		require.NoError(t, err)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	v1 := router.Group("/api/v1")
	v1.GET("/entities/:business_identifier/authorizations", handlers.GetEntityAuthorizations)
	v1.GET("/accounts/:account_id/authorizations", handlers.GetAccountAuthorizations)
	v1.GET("/accounts/:account_id/products", handlers.GetAccountProducts)
	v1.GET("/accounts/:account_id/products/:product_code/authorizations", handlers.GetProductAuthorizations)
	v1.GET("/users/:sub/authorizations", handlers.GetUserAuthorizations)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	return w
}

func alicePrincipal() *authz.PrincipalContext {
	return authz.FromClaims(authz.Claims{SubjectID: "alice", RealmRoles: []authz.Role{authz.RolePublicUser}})
}

func TestGetEntityAuthorizations(t *testing.T) {
	t.Run("member gets capabilities", func(t *testing.T) {
		router := setupAuthorizationRouter(t, alicePrincipal())

		w := doRequest(t, router, "/api/v1/entities/CP0001234/authorizations")
		require.Equal(t, http.StatusOK, w.Code)

		var got objects.Authorization
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.NotNil(t, got.OrgMembership)
		assert.Equal(t, "ADMIN", *got.OrgMembership)
		assert.Contains(t, got.Roles, "manage_settings")
	})

	t.Run("no access is 200 with null membership", func(t *testing.T) {
		router := setupAuthorizationRouter(t, authz.FromClaims(authz.Claims{SubjectID: "stranger"}))

		w := doRequest(t, router, "/api/v1/entities/CP0001234/authorizations")
		require.Equal(t, http.StatusOK, w.Code)

		var got objects.Authorization
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Nil(t, got.OrgMembership)
		assert.Empty(t, got.Roles)
	})
}

func TestGetAccountAuthorizations(t *testing.T) {
	router := setupAuthorizationRouter(t, alicePrincipal())

	t.Run("default product code", func(t *testing.T) {
		w := doRequest(t, router, "/api/v1/accounts/1/authorizations")
		require.Equal(t, http.StatusOK, w.Code)

		var got objects.Authorization
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.NotNil(t, got.OrgMembership)
		assert.Equal(t, "ADMIN", *got.OrgMembership)
		assert.NotEmpty(t, got.Roles)
	})

	t.Run("unsubscribed product keeps membership, drops roles", func(t *testing.T) {
		w := doRequest(t, router, "/api/v1/accounts/1/authorizations?product_code=PPR")
		require.Equal(t, http.StatusOK, w.Code)

		var got objects.Authorization
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.NotNil(t, got.OrgMembership)
		assert.Empty(t, got.Roles)
	})

	t.Run("invalid account id is 400", func(t *testing.T) {
		w := doRequest(t, router, "/api/v1/accounts/not-a-number/authorizations")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetProductAuthorizations(t *testing.T) {
	router := setupAuthorizationRouter(t, alicePrincipal())

	w := doRequest(t, router, "/api/v1/accounts/1/products/BUSINESS/authorizations")
	require.Equal(t, http.StatusOK, w.Code)

	var got objects.Authorization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.OrgMembership)
	assert.Equal(t, []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"}, got.Roles)
}

func TestGetAccountProducts(t *testing.T) {
	t.Run("member lists active subscriptions", func(t *testing.T) {
		router := setupAuthorizationRouter(t, alicePrincipal())

		w := doRequest(t, router, "/api/v1/accounts/1/products")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"productCodes":["BUSINESS"]}`, w.Body.String())
	})

	t.Run("non-member gets an empty list", func(t *testing.T) {
		router := setupAuthorizationRouter(t, authz.FromClaims(authz.Claims{SubjectID: "stranger"}))

		w := doRequest(t, router, "/api/v1/accounts/1/products")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"productCodes":[]}`, w.Body.String())
	})
}

func TestGetUserAuthorizations(t *testing.T) {
	t.Run("own view", func(t *testing.T) {
		router := setupAuthorizationRouter(t, alicePrincipal())

		w := doRequest(t, router, "/api/v1/users/alice/authorizations")
		require.Equal(t, http.StatusOK, w.Code)

		var got objects.UserAuthorizations
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Authorizations, 1)
		assert.Equal(t, 1, got.Authorizations[0].OrgID)
		assert.Equal(t, []string{"CP0001234"}, got.Authorizations[0].BusinessIdentifiers)
	})

	t.Run("foreign view requires staff", func(t *testing.T) {
		router := setupAuthorizationRouter(t, alicePrincipal())

		w := doRequest(t, router, "/api/v1/users/bob/authorizations")
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Access denied")
	})

	t.Run("staff reads any subject", func(t *testing.T) {
		staff := authz.FromClaims(authz.Claims{SubjectID: "staff-1", RealmRoles: []authz.Role{authz.RoleStaff}})
		router := setupAuthorizationRouter(t, staff)

		w := doRequest(t, router, "/api/v1/users/alice/authorizations")
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown subject is an empty list", func(t *testing.T) {
		router := setupAuthorizationRouter(t, authz.FromClaims(authz.Claims{SubjectID: "nobody"}))

		w := doRequest(t, router, "/api/v1/users/nobody/authorizations")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authorizations":[]}`, w.Body.String())
	})
}
