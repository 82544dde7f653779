package authz

// Requirement is the role-requirement specification evaluated by the engine.
// Constructed per call site, never persisted. Zero values mean "no constraint"
// for the role lists and "no target" for the org/entity fields; a requirement
// with nothing set still denies for non-staff principals (fail closed).
type Requirement struct {
	// OneOf is satisfied if the principal (or its resolved membership) holds
	// any of the listed roles.
	OneOf []Role

	// Equals is satisfied only by an exact role match.
	Equals Role

	// Disabled denies immediately when the principal carries any listed role,
	// overriding every other branch including staff.
	Disabled []Role

	// OrgID scopes the check to one org's membership or subscription.
	OrgID *int

	// BusinessIdentifier scopes the check to an entity; access is satisfied by
	// any org membership along any affiliation path.
	BusinessIdentifier string

	// SystemRequired forces a service account to match org or product scope
	// instead of bypassing. Never valid together with a staff principal.
	SystemRequired bool
}

// matchesMembership tests a resolved membership role against the requirement.
// With no role constraint, presence of any membership is sufficient.
func (r Requirement) matchesMembership(role Role) bool {
	if r.Equals != "" {
		return role == r.Equals
	}

	if len(r.OneOf) == 0 {
		return true
	}

	for _, want := range r.OneOf {
		if role == want {
			return true
		}
	}

	return false
}

// unconstrained reports whether no role list constrains the check.
func (r Requirement) unconstrained() bool {
	return len(r.OneOf) == 0 && r.Equals == ""
}

// untargeted reports whether no org or entity target is supplied.
func (r Requirement) untargeted() bool {
	return r.OrgID == nil && r.BusinessIdentifier == ""
}
