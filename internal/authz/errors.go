package authz

import "errors"

var (
	// ErrForbidden is returned for every authorization denial. The HTTP
	// boundary maps it to 403.
	ErrForbidden = errors.New("authorization denied")

	// ErrMalformedClaims indicates a structurally invalid claim set handed in
	// by the token verification layer. Mapped to 401, never defaulted to an
	// anonymous principal.
	ErrMalformedClaims = errors.New("malformed claims")

	// ErrStaffSystemRequirement is a call-site configuration error: a staff
	// principal reached a requirement with SystemRequired set. It must stay
	// loud so the bug is caught in testing instead of masking a bypass or a
	// false lockout. Mapped to 500, never 403.
	ErrStaffSystemRequirement = errors.New("authz: staff principal evaluated against a system-required check")
)
