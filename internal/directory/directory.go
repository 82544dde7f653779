// Package directory defines the read-only relationship directories the
// authorization engine consults: org memberships, entity affiliations and
// product subscriptions. Implementations must return snapshots of persisted
// state bounded to single-key lookups; the engine performs no mutation.
package directory

import "context"

// MembershipDirectory is the read-only view of org membership records.
type MembershipDirectory interface {
	// Find returns the membership of a user in an org, or nil when none exists.
	Find(ctx context.Context, userID string, orgID int) (*Membership, error)
	// FindAllForUser returns the user's memberships, optionally filtered by status.
	FindAllForUser(ctx context.Context, userID string, statuses ...MembershipStatus) ([]Membership, error)
	// FindAllForOrg returns the org's memberships, optionally filtered by status.
	FindAllForOrg(ctx context.Context, orgID int, statuses ...MembershipStatus) ([]Membership, error)
}

// AffiliationDirectory is the read-only view of entity-to-org affiliations.
// Entities are addressed by business identifier.
type AffiliationDirectory interface {
	// Exists reports whether the entity is affiliated with the org.
	Exists(ctx context.Context, businessIdentifier string, orgID int) (bool, error)
	// FindOrgsForEntity returns the ids of every org affiliated with the entity.
	// An unknown business identifier yields an empty slice, not an error.
	FindOrgsForEntity(ctx context.Context, businessIdentifier string) ([]int, error)
	// FindEntitiesForOrg returns the entities affiliated with the org.
	FindEntitiesForOrg(ctx context.Context, orgID int) ([]Entity, error)
	// FindEntity returns the entity record, or nil when the identifier does
	// not resolve.
	FindEntity(ctx context.Context, businessIdentifier string) (*Entity, error)
}

// ProductScopeDirectory is the read-only view of product subscriptions.
type ProductScopeDirectory interface {
	// HasActiveSubscription reports whether the org holds an ACTIVE
	// subscription for the product code.
	HasActiveSubscription(ctx context.Context, orgID int, productCode string) (bool, error)
	// FindActiveSubscriptions returns the org's ACTIVE subscriptions.
	FindActiveSubscriptions(ctx context.Context, orgID int) ([]ProductSubscription, error)
}
