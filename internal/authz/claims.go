package authz

import (
	"fmt"

	"github.com/spf13/cast"
)

// Claims is the decoded, already-signature-verified claim set handed in by the
// token verification layer. Optional keys may be absent; only a missing or
// invalid realm_access.roles container is a parse failure.
type Claims struct {
	SubjectID   string
	IdpUserID   string
	RealmRoles  []Role
	LoginSource LoginSource
	ProductCode string
	Username    string
}

// ParseClaims extracts the recognized keys from a verified claim map.
// Returns ErrMalformedClaims if the realm_access.roles container is missing
// or structurally invalid.
func ParseClaims(claims map[string]any) (Claims, error) {
	realmAccess, ok := claims["realm_access"]
	if !ok {
		return Claims{}, fmt.Errorf("%w: missing realm_access", ErrMalformedClaims)
	}

	accessMap, err := cast.ToStringMapE(realmAccess)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: realm_access is not an object", ErrMalformedClaims)
	}

	rawRoles, ok := accessMap["roles"]
	if !ok {
		return Claims{}, fmt.Errorf("%w: missing realm_access.roles", ErrMalformedClaims)
	}

	roleStrings, err := cast.ToStringSliceE(rawRoles)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: realm_access.roles is not a list", ErrMalformedClaims)
	}

	roles := make([]Role, 0, len(roleStrings))
	for _, r := range roleStrings {
		roles = append(roles, Role(r))
	}

	return Claims{
		SubjectID:   cast.ToString(claims["sub"]),
		IdpUserID:   cast.ToString(claims["idp_userid"]),
		RealmRoles:  roles,
		LoginSource: LoginSource(cast.ToString(claims["loginSource"])),
		ProductCode: cast.ToString(claims["product_code"]),
		Username:    cast.ToString(claims["username"]),
	}, nil
}
