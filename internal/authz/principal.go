package authz

import (
	"context"
	"fmt"
	"slices"
)

// PrincipalKind defines authorization principal kinds.
type PrincipalKind int

const (
	// PrincipalKindAnonymous is an unauthenticated or subject-less principal.
	PrincipalKindAnonymous PrincipalKind = iota
	// PrincipalKindStaff is a registry staff principal.
	PrincipalKindStaff
	// PrincipalKindSystem is a machine-to-machine service account principal.
	PrincipalKindSystem
	// PrincipalKindPublicUser is an interactively authenticated end user.
	PrincipalKindPublicUser
	// PrincipalKindPasscodeUser is a legacy passcode login identified by username.
	PrincipalKindPasscodeUser
)

// String returns string representation of PrincipalKind.
func (k PrincipalKind) String() string {
	switch k {
	case PrincipalKindStaff:
		return "staff"
	case PrincipalKindSystem:
		return "system"
	case PrincipalKindPublicUser:
		return "user"
	case PrincipalKindPasscodeUser:
		return "passcode"
	case PrincipalKindAnonymous:
		return "anonymous"
	default:
		return "anonymous"
	}
}

// PrincipalContext is the classified authenticated caller. Immutable per
// request; constructed once from verified claims and passed down explicitly.
type PrincipalContext struct {
	kind   PrincipalKind
	claims Claims
}

// Classify parses a verified claim map and classifies it into a principal.
// An empty role set is valid and classifies as anonymous; only a structurally
// invalid claim map fails.
func Classify(claims map[string]any) (*PrincipalContext, error) {
	parsed, err := ParseClaims(claims)
	if err != nil {
		return nil, err
	}

	return FromClaims(parsed), nil
}

// FromClaims classifies an already-parsed claim set.
func FromClaims(claims Claims) *PrincipalContext {
	return &PrincipalContext{
		kind:   classifyKind(claims),
		claims: claims,
	}
}

func classifyKind(claims Claims) PrincipalKind {
	switch {
	case slices.Contains(claims.RealmRoles, RoleSystem):
		return PrincipalKindSystem
	case slices.Contains(claims.RealmRoles, RoleStaff):
		return PrincipalKindStaff
	case claims.SubjectID == "":
		return PrincipalKindAnonymous
	case claims.LoginSource == LoginSourcePasscode:
		return PrincipalKindPasscodeUser
	default:
		return PrincipalKindPublicUser
	}
}

// Kind returns the derived principal kind.
func (p *PrincipalContext) Kind() PrincipalKind {
	return p.kind
}

// SubjectID returns the opaque user identifier, empty for anonymous principals.
func (p *PrincipalContext) SubjectID() string {
	return p.claims.SubjectID
}

// IdpUserID returns the identity-provider user id.
func (p *PrincipalContext) IdpUserID() string {
	return p.claims.IdpUserID
}

// Username returns the token username, used for legacy passcode matching.
func (p *PrincipalContext) Username() string {
	return p.claims.Username
}

// LoginSource returns the identity provider path.
func (p *PrincipalContext) LoginSource() LoginSource {
	return p.claims.LoginSource
}

// ProductScope returns the product code scope of a service account, empty for
// all other principals.
func (p *PrincipalContext) ProductScope() string {
	if p.kind != PrincipalKindSystem {
		return ""
	}

	return p.claims.ProductCode
}

// IsStaff checks if it is a staff principal.
func (p *PrincipalContext) IsStaff() bool {
	return p.kind == PrincipalKindStaff
}

// IsSystem checks if it is a service account principal.
func (p *PrincipalContext) IsSystem() bool {
	return p.kind == PrincipalKindSystem
}

// IsPublicUser checks if it is a public user principal.
func (p *PrincipalContext) IsPublicUser() bool {
	return p.kind == PrincipalKindPublicUser
}

// IsAnonymous checks if it is an anonymous principal.
func (p *PrincipalContext) IsAnonymous() bool {
	return p.kind == PrincipalKindAnonymous
}

// HasRole checks if the principal carries the realm role.
func (p *PrincipalContext) HasRole(role Role) bool {
	return slices.Contains(p.claims.RealmRoles, role)
}

// HasAnyRole checks if the principal carries any of the realm roles.
func (p *PrincipalContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}

	return false
}

// String returns string representation of the principal (for audit logs).
func (p *PrincipalContext) String() string {
	switch p.kind {
	case PrincipalKindStaff, PrincipalKindPublicUser:
		if p.claims.SubjectID != "" {
			return fmt.Sprintf("%s:%s", p.kind, p.claims.SubjectID)
		}

		return fmt.Sprintf("%s:unknown", p.kind)
	case PrincipalKindSystem:
		if p.claims.ProductCode != "" {
			return fmt.Sprintf("system:%s", p.claims.ProductCode)
		}

		return "system:unscoped"
	case PrincipalKindPasscodeUser:
		if p.claims.Username != "" {
			return fmt.Sprintf("passcode:%s", p.claims.Username)
		}

		return "passcode:unknown"
	case PrincipalKindAnonymous:
		return "anonymous"
	default:
		return "anonymous"
	}
}

// principalKey is an unexported key type to prevent external forgery.
type principalKey struct{}

// WithPrincipal sets the principal on the context, returns an error if a
// different principal is already present. Ensures each request carries exactly
// one principal, preventing principal mixing.
func WithPrincipal(ctx context.Context, p *PrincipalContext) (context.Context, error) {
	if existing, ok := GetPrincipal(ctx); ok {
		if existing != p {
			return ctx, fmt.Errorf("authz: principal conflict: existing=%s, new=%s", existing.String(), p.String())
		}

		return ctx, nil // Same principal, idempotent
	}

	return context.WithValue(ctx, principalKey{}, p), nil
}

// GetPrincipal reads the principal from the context.
func GetPrincipal(ctx context.Context) (*PrincipalContext, bool) {
	p, ok := ctx.Value(principalKey{}).(*PrincipalContext)
	return p, ok
}

// MustGetPrincipal reads the principal, panics if not present (used in chains
// where the auth middleware is known to have run).
func MustGetPrincipal(ctx context.Context) *PrincipalContext {
	p, ok := GetPrincipal(ctx)
	if !ok {
		panic("authz: no principal in context")
	}

	return p
}
