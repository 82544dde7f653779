package biz

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/contexts"
	"github.com/accounthub/accounthub/internal/directory"
	"github.com/accounthub/accounthub/internal/log"
	"github.com/accounthub/accounthub/internal/objects"
	"github.com/accounthub/accounthub/internal/scopes"
)

type AuthorizationServiceParams struct {
	fx.In

	Memberships  directory.MembershipDirectory
	Affiliations directory.AffiliationDirectory
	Products     directory.ProductScopeDirectory
}

func NewAuthorizationService(params AuthorizationServiceParams) *AuthorizationService {
	return &AuthorizationService{
		memberships:  params.Memberships,
		affiliations: params.Affiliations,
		products:     params.Products,
	}
}

// AuthorizationService is the read side of the authorization core: it returns
// a descriptor of the caller's effective permissions instead of a boolean, and
// never errors for "no access". Only directory failures propagate.
type AuthorizationService struct {
	memberships  directory.MembershipDirectory
	affiliations directory.AffiliationDirectory
	products     directory.ProductScopeDirectory
}

// emptyAuthorization is the "no access" descriptor.
func emptyAuthorization() objects.Authorization {
	return objects.Authorization{OrgMembership: nil, Roles: []string{}}
}

func membershipAuthorization(membershipType directory.MembershipType) objects.Authorization {
	return objects.Authorization{
		OrgMembership: lo.ToPtr(string(membershipType)),
		Roles:         scopes.ForMembership(membershipType),
	}
}

// GetUserAuthorizationsForEntity returns the caller's effective permissions on
// one entity. Staff get an empty non-erroring result (their elevated path is
// upstream); passcode principals are matched by username against the entity;
// service accounts are validated by product scope and get a synthetic
// admin-equivalent membership on success.
func (s *AuthorizationService) GetUserAuthorizationsForEntity(
	ctx context.Context,
	principal *authz.PrincipalContext,
	businessIdentifier string,
) (objects.Authorization, error) {
	switch principal.Kind() {
	case authz.PrincipalKindStaff:
		return emptyAuthorization(), nil
	case authz.PrincipalKindSystem:
		return s.systemEntityAuthorization(ctx, principal, businessIdentifier)
	case authz.PrincipalKindPasscodeUser:
		return s.passcodeEntityAuthorization(ctx, principal, businessIdentifier)
	case authz.PrincipalKindPublicUser:
		return s.memberEntityAuthorization(ctx, principal, businessIdentifier)
	case authz.PrincipalKindAnonymous:
		return emptyAuthorization(), nil
	default:
		return emptyAuthorization(), nil
	}
}

func (s *AuthorizationService) systemEntityAuthorization(
	ctx context.Context,
	principal *authz.PrincipalContext,
	businessIdentifier string,
) (objects.Authorization, error) {
	scope := principal.ProductScope()
	if scope == "" {
		return emptyAuthorization(), nil
	}

	if scope == authz.ProductScopeAll {
		return membershipAuthorization(directory.MembershipTypeAdmin), nil
	}

	orgIDs, err := s.affiliations.FindOrgsForEntity(ctx, businessIdentifier)
	if err != nil {
		return objects.Authorization{}, err
	}

	for _, orgID := range orgIDs {
		ok, err := s.products.HasActiveSubscription(ctx, orgID, scope)
		if err != nil {
			return objects.Authorization{}, err
		}

		if ok {
			return membershipAuthorization(directory.MembershipTypeAdmin), nil
		}
	}

	return emptyAuthorization(), nil
}

func (s *AuthorizationService) passcodeEntityAuthorization(
	ctx context.Context,
	principal *authz.PrincipalContext,
	businessIdentifier string,
) (objects.Authorization, error) {
	entity, err := s.affiliations.FindEntity(ctx, businessIdentifier)
	if err != nil {
		return objects.Authorization{}, err
	}

	// Passcode logins carry the business identifier as their username.
	if entity == nil || !strings.EqualFold(entity.BusinessIdentifier, principal.Username()) {
		return emptyAuthorization(), nil
	}

	return membershipAuthorization(directory.MembershipTypeAdmin), nil
}

func (s *AuthorizationService) memberEntityAuthorization(
	ctx context.Context,
	principal *authz.PrincipalContext,
	businessIdentifier string,
) (objects.Authorization, error) {
	orgIDs, err := s.affiliations.FindOrgsForEntity(ctx, businessIdentifier)
	if err != nil {
		return objects.Authorization{}, err
	}

	for _, orgID := range orgIDs {
		membership, err := s.memberships.Find(ctx, principal.SubjectID(), orgID)
		if err != nil {
			return objects.Authorization{}, err
		}

		if membership != nil && membership.IsActive() {
			return membershipAuthorization(membership.Type), nil
		}
	}

	return emptyAuthorization(), nil
}

// GetAccountAuthorizationsForOrg returns the caller's membership-derived role
// on the org. The role list is empty when the org lacks an ACTIVE subscription
// for the product code: membership alone does not grant product-scoped
// capability, but the membership itself is still reported.
func (s *AuthorizationService) GetAccountAuthorizationsForOrg(
	ctx context.Context,
	principal *authz.PrincipalContext,
	orgID int,
	productCode string,
) (objects.Authorization, error) {
	membership, err := s.memberships.Find(ctx, principal.SubjectID(), orgID)
	if err != nil {
		contexts.AddError(ctx, err)
		return objects.Authorization{}, err
	}

	if membership == nil || !membership.IsActive() {
		return emptyAuthorization(), nil
	}

	hasSubscription, err := s.products.HasActiveSubscription(ctx, orgID, productCode)
	if err != nil {
		return objects.Authorization{}, err
	}

	authorization := objects.Authorization{
		OrgMembership: lo.ToPtr(string(membership.Type)),
		Roles:         []string{},
	}

	if hasSubscription {
		authorization.Roles = scopes.ForMembership(membership.Type)
	}

	return authorization, nil
}

// GetAccountAuthorizationsForProduct drives per-product capability lists: the
// role list is non-empty only when both an ACTIVE membership and an ACTIVE
// subscription for the product exist.
func (s *AuthorizationService) GetAccountAuthorizationsForProduct(
	ctx context.Context,
	principal *authz.PrincipalContext,
	orgID int,
	productCode string,
) (objects.Authorization, error) {
	return s.GetAccountAuthorizationsForOrg(ctx, principal, orgID, productCode)
}

// GetAccountProducts lists the product codes the org holds an active
// subscription for. Staff see every account; other callers need an active
// membership on the org, and get an empty list rather than an error without
// one.
func (s *AuthorizationService) GetAccountProducts(
	ctx context.Context,
	principal *authz.PrincipalContext,
	orgID int,
) (objects.AccountProducts, error) {
	if !principal.IsStaff() {
		membership, err := s.memberships.Find(ctx, principal.SubjectID(), orgID)
		if err != nil {
			contexts.AddError(ctx, err)
			return objects.AccountProducts{}, err
		}

		if membership == nil || !membership.IsActive() {
			return objects.AccountProducts{ProductCodes: []string{}}, nil
		}
	}

	subscriptions, err := s.products.FindActiveSubscriptions(ctx, orgID)
	if err != nil {
		contexts.AddError(ctx, err)
		return objects.AccountProducts{}, err
	}

	codes := lo.Map(subscriptions, func(sub directory.ProductSubscription, _ int) string {
		return sub.ProductCode
	})

	if codes == nil {
		codes = []string{}
	}

	return objects.AccountProducts{ProductCodes: codes}, nil
}

// GetUserAuthorizations is the bulk view: one descriptor per org the subject
// is an active member of, annotated with the entities reachable through that
// org. Unknown subjects get an empty list, not an error.
func (s *AuthorizationService) GetUserAuthorizations(
	ctx context.Context,
	subjectID string,
) (objects.UserAuthorizations, error) {
	memberships, err := s.memberships.FindAllForUser(ctx, subjectID, directory.MembershipStatusActive)
	if err != nil {
		contexts.AddError(ctx, err)
		return objects.UserAuthorizations{}, err
	}

	out := objects.UserAuthorizations{
		Authorizations: []objects.EntityAuthorization{},
	}

	for _, membership := range memberships {
		entities, err := s.affiliations.FindEntitiesForOrg(ctx, membership.OrgID)
		if err != nil {
			return objects.UserAuthorizations{}, err
		}

		identifiers := lo.Map(entities, func(e directory.Entity, _ int) string {
			return e.BusinessIdentifier
		})

		out.Authorizations = append(out.Authorizations, objects.EntityAuthorization{
			OrgID:               membership.OrgID,
			OrgMembership:       lo.ToPtr(string(membership.Type)),
			Roles:               scopes.ForMembership(membership.Type),
			BusinessIdentifiers: identifiers,
		})
	}

	log.Debug(ctx, "user authorizations resolved",
		log.String("subject", subjectID),
		log.Int("orgs", len(out.Authorizations)),
	)

	return out, nil
}
