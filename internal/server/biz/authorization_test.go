package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/directory"
)

// setupAuthorizationService seeds the fixture used across the query tests:
//
//	org 1: alice ADMIN (active), active PPR subscription
//	org 2: bob USER (active), no subscription
//	entity CP0001234: affiliated with org 1 and org 2
//	entity BC0007654: affiliated with org 2 only
func setupAuthorizationService(t *testing.T) *AuthorizationService {
	t.Helper()

	store := directory.NewMemoryStore()

	store.AddMembership(directory.Membership{UserID: "alice", OrgID: 1, Type: directory.MembershipTypeAdmin, Status: directory.MembershipStatusActive})
	store.AddMembership(directory.Membership{UserID: "bob", OrgID: 2, Type: directory.MembershipTypeUser, Status: directory.MembershipStatusActive})
	store.AddMembership(directory.Membership{UserID: "carol", OrgID: 1, Type: directory.MembershipTypeUser, Status: directory.MembershipStatusInactive})

	store.AddEntity(directory.Entity{ID: 10, BusinessIdentifier: "CP0001234", Name: "Shared Coop"})
	store.AddEntity(directory.Entity{ID: 11, BusinessIdentifier: "BC0007654", Name: "Solo Corp"})
	store.AddAffiliation(directory.Affiliation{EntityID: 10, OrgID: 1})
	store.AddAffiliation(directory.Affiliation{EntityID: 10, OrgID: 2})
	store.AddAffiliation(directory.Affiliation{EntityID: 11, OrgID: 2})

	store.AddSubscription(directory.ProductSubscription{OrgID: 1, ProductCode: "PPR", Status: directory.SubscriptionStatusActive})

	return NewAuthorizationService(AuthorizationServiceParams{
		Memberships:  store,
		Affiliations: store,
		Products:     store,
	})
}

func publicPrincipal(sub string) *authz.PrincipalContext {
	return authz.FromClaims(authz.Claims{SubjectID: sub, RealmRoles: []authz.Role{authz.RolePublicUser}})
}

func TestGetUserAuthorizationsForEntity(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	tests := []struct {
		name               string
		principal          *authz.PrincipalContext
		businessIdentifier string
		wantMembership     *string
		wantRoles          []string
	}{
		{
			name:               "admin through affiliated org",
			principal:          publicPrincipal("alice"),
			businessIdentifier: "CP0001234",
			wantMembership:     strPtr("ADMIN"),
			wantRoles:          []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"},
		},
		{
			name:               "member through second affiliated org",
			principal:          publicPrincipal("bob"),
			businessIdentifier: "CP0001234",
			wantMembership:     strPtr("USER"),
			wantRoles:          []string{"view", "edit"},
		},
		{
			name:               "no affiliation path",
			principal:          publicPrincipal("alice"),
			businessIdentifier: "BC0007654",
			wantRoles:          []string{},
		},
		{
			name:               "inactive membership grants nothing",
			principal:          publicPrincipal("carol"),
			businessIdentifier: "CP0001234",
			wantRoles:          []string{},
		},
		{
			name:               "unknown entity is empty, not an error",
			principal:          publicPrincipal("alice"),
			businessIdentifier: "XX0000000",
			wantRoles:          []string{},
		},
		{
			name:               "staff handled upstream, empty here",
			principal:          authz.FromClaims(authz.Claims{SubjectID: "staff-1", RealmRoles: []authz.Role{authz.RoleStaff}}),
			businessIdentifier: "CP0001234",
			wantRoles:          []string{},
		},
		{
			name:               "anonymous gets nothing",
			principal:          authz.FromClaims(authz.Claims{}),
			businessIdentifier: "CP0001234",
			wantRoles:          []string{},
		},
		{
			name:               "system with ALL scope",
			principal:          systemClaims("ALL"),
			businessIdentifier: "CP0001234",
			wantMembership:     strPtr("ADMIN"),
			wantRoles:          []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"},
		},
		{
			name:               "system scoped with subscribed affiliated org",
			principal:          systemClaims("PPR"),
			businessIdentifier: "CP0001234",
			wantMembership:     strPtr("ADMIN"),
			wantRoles:          []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"},
		},
		{
			name:               "system scoped without subscribed org",
			principal:          systemClaims("PPR"),
			businessIdentifier: "BC0007654",
			wantRoles:          []string{},
		},
		{
			name:               "unscoped system gets nothing",
			principal:          systemClaims(""),
			businessIdentifier: "CP0001234",
			wantRoles:          []string{},
		},
		{
			name:               "passcode username matches identifier",
			principal:          passcodeClaims("cp0001234"),
			businessIdentifier: "CP0001234",
			wantMembership:     strPtr("ADMIN"),
			wantRoles:          []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"},
		},
		{
			name:               "passcode username mismatch is empty, not an error",
			principal:          passcodeClaims("INVALID"),
			businessIdentifier: "CP0001234",
			wantRoles:          []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.GetUserAuthorizationsForEntity(ctx, tt.principal, tt.businessIdentifier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMembership, got.OrgMembership)
			assert.Equal(t, tt.wantRoles, got.Roles)
		})
	}
}

func TestGetUserAuthorizationsForEntityIsIdempotent(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	first, err := service.GetUserAuthorizationsForEntity(ctx, publicPrincipal("alice"), "CP0001234")
	require.NoError(t, err)

	second, err := service.GetUserAuthorizationsForEntity(ctx, publicPrincipal("alice"), "CP0001234")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetAccountAuthorizationsForOrg(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	tests := []struct {
		name           string
		principal      *authz.PrincipalContext
		orgID          int
		productCode    string
		wantMembership *string
		wantRoles      []string
	}{
		{
			name:           "membership with active subscription",
			principal:      publicPrincipal("alice"),
			orgID:          1,
			productCode:    "PPR",
			wantMembership: strPtr("ADMIN"),
			wantRoles:      []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"},
		},
		{
			name:           "membership without subscription keeps membership, drops roles",
			principal:      publicPrincipal("bob"),
			orgID:          2,
			productCode:    "PPR",
			wantMembership: strPtr("USER"),
			wantRoles:      []string{},
		},
		{
			name:        "no membership",
			principal:   publicPrincipal("bob"),
			orgID:       1,
			productCode: "PPR",
			wantRoles:   []string{},
		},
		{
			name:        "inactive membership",
			principal:   publicPrincipal("carol"),
			orgID:       1,
			productCode: "PPR",
			wantRoles:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.GetAccountAuthorizationsForOrg(ctx, tt.principal, tt.orgID, tt.productCode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMembership, got.OrgMembership)
			assert.Equal(t, tt.wantRoles, got.Roles)
		})
	}
}

func TestGetAccountAuthorizationsForProduct(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	byOrg, err := service.GetAccountAuthorizationsForOrg(ctx, publicPrincipal("alice"), 1, "PPR")
	require.NoError(t, err)

	byProduct, err := service.GetAccountAuthorizationsForProduct(ctx, publicPrincipal("alice"), 1, "PPR")
	require.NoError(t, err)

	assert.Equal(t, byOrg, byProduct)
}

func TestGetAccountProducts(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *authz.PrincipalContext
		orgID     int
		want      []string
	}{
		{
			name:      "member sees active subscriptions",
			principal: publicPrincipal("alice"),
			orgID:     1,
			want:      []string{"PPR"},
		},
		{
			name:      "org without subscriptions",
			principal: publicPrincipal("bob"),
			orgID:     2,
			want:      []string{},
		},
		{
			name:      "non-member gets an empty list, not an error",
			principal: publicPrincipal("bob"),
			orgID:     1,
			want:      []string{},
		},
		{
			name:      "inactive membership gets an empty list",
			principal: publicPrincipal("carol"),
			orgID:     1,
			want:      []string{},
		},
		{
			name:      "staff see any account",
			principal: authz.FromClaims(authz.Claims{SubjectID: "staff-1", RealmRoles: []authz.Role{authz.RoleStaff}}),
			orgID:     1,
			want:      []string{"PPR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.GetAccountProducts(ctx, tt.principal, tt.orgID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ProductCodes)
		})
	}
}

func TestGetUserAuthorizations(t *testing.T) {
	service := setupAuthorizationService(t)
	ctx := context.Background()

	out, err := service.GetUserAuthorizations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, out.Authorizations, 1)

	entry := out.Authorizations[0]
	assert.Equal(t, 1, entry.OrgID)
	assert.Equal(t, strPtr("ADMIN"), entry.OrgMembership)
	assert.Equal(t, []string{"view", "edit", "invite", "manage_members", "change_role", "manage_settings"}, entry.Roles)
	assert.Equal(t, []string{"CP0001234"}, entry.BusinessIdentifiers)
}

func TestGetUserAuthorizationsSkipsInactiveMemberships(t *testing.T) {
	service := setupAuthorizationService(t)

	out, err := service.GetUserAuthorizations(context.Background(), "carol")
	require.NoError(t, err)
	assert.Empty(t, out.Authorizations)
	assert.NotNil(t, out.Authorizations)
}

func TestGetUserAuthorizationsUnknownSubject(t *testing.T) {
	service := setupAuthorizationService(t)

	out, err := service.GetUserAuthorizations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, out.Authorizations)
	assert.NotNil(t, out.Authorizations)
}

func strPtr(s string) *string {
	return &s
}

func systemClaims(scope string) *authz.PrincipalContext {
	return authz.FromClaims(authz.Claims{
		SubjectID:   "svc-1",
		RealmRoles:  []authz.Role{authz.RoleSystem},
		ProductCode: scope,
	})
}

func passcodeClaims(username string) *authz.PrincipalContext {
	return authz.FromClaims(authz.Claims{
		SubjectID:   "user-passcode",
		LoginSource: authz.LoginSourcePasscode,
		Username:    username,
	})
}
