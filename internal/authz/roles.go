package authz

import "slices"

// Role is a closed role tag. It covers both realm roles carried by the token
// (staff, system, public_user) and org membership roles (ADMIN, COORDINATOR, USER),
// so a single requirement list can constrain either kind.
type Role string

const (
	// RoleStaff marks registry staff principals.
	RoleStaff Role = "staff"
	// RoleSystem marks machine-to-machine service accounts.
	RoleSystem Role = "system"
	// RolePublicUser marks interactively authenticated end users.
	RolePublicUser Role = "public_user"

	// RoleAdmin is the org membership admin role.
	RoleAdmin Role = "ADMIN"
	// RoleCoordinator is the org membership coordinator role.
	RoleCoordinator Role = "COORDINATOR"
	// RoleUser is the org membership member role.
	RoleUser Role = "USER"
)

// allRoles is the closed set of recognized role tags.
var allRoles = []Role{
	RoleStaff,
	RoleSystem,
	RolePublicUser,
	RoleAdmin,
	RoleCoordinator,
	RoleUser,
}

// IsValidRole reports whether the tag belongs to the closed role set.
func IsValidRole(role string) bool {
	return slices.Contains(allRoles, Role(role))
}

// LoginSource identifies the identity provider path the principal came through.
type LoginSource string

const (
	LoginSourceStaff    LoginSource = "STAFF"
	LoginSourceBCSC     LoginSource = "BCSC"
	LoginSourceBCEID    LoginSource = "BCEID"
	LoginSourceBCROS    LoginSource = "BCROS"
	LoginSourcePasscode LoginSource = "PASSCODE"
	LoginSourceAPIGW    LoginSource = "API_GW"
	LoginSourceUnset    LoginSource = ""
)

// ProductScopeAll is the sentinel product scope granting a service account
// unconditional access.
const ProductScopeAll = "ALL"
