package objects

// Authorization describes a caller's effective permissions against one org or
// entity. "No access" is a valid value (nil membership, empty roles), never an
// error.
type Authorization struct {
	OrgMembership *string  `json:"orgMembership"`
	Roles         []string `json:"roles"`
}

// EntityAuthorization is the per-org breakdown attached to a bulk user view.
type EntityAuthorization struct {
	OrgID               int      `json:"orgId"`
	OrgMembership       *string  `json:"orgMembership"`
	Roles               []string `json:"roles"`
	BusinessIdentifiers []string `json:"businessIdentifiers,omitempty"`
}

// UserAuthorizations is the bulk view: one descriptor per org the subject is a
// member of.
type UserAuthorizations struct {
	Authorizations []EntityAuthorization `json:"authorizations"`
}

// AccountProducts lists the product codes an account holds an active
// subscription for.
type AccountProducts struct {
	ProductCodes []string `json:"productCodes"`
}
