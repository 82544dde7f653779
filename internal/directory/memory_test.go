package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *MemoryStore {
	store := NewMemoryStore()

	store.AddMembership(Membership{UserID: "alice", OrgID: 1, Type: MembershipTypeAdmin, Status: MembershipStatusActive})
	store.AddMembership(Membership{UserID: "alice", OrgID: 2, Type: MembershipTypeUser, Status: MembershipStatusPendingApproval})
	store.AddMembership(Membership{UserID: "bob", OrgID: 1, Type: MembershipTypeCoordinator, Status: MembershipStatusInactive})

	store.AddEntity(Entity{ID: 10, BusinessIdentifier: "CP0001234", Name: "Shared Coop"})
	store.AddEntity(Entity{ID: 11, BusinessIdentifier: "BC0007654", Name: "Solo Corp"})
	store.AddAffiliation(Affiliation{EntityID: 10, OrgID: 1})
	store.AddAffiliation(Affiliation{EntityID: 10, OrgID: 2})
	store.AddAffiliation(Affiliation{EntityID: 11, OrgID: 2})

	store.AddSubscription(ProductSubscription{OrgID: 1, ProductCode: "PPR", Status: SubscriptionStatusActive})
	store.AddSubscription(ProductSubscription{OrgID: 1, ProductCode: "MHR", Status: SubscriptionStatusInactive})

	return store
}

func TestMemoryStoreFind(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	membership, err := store.Find(ctx, "alice", 1)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, MembershipTypeAdmin, membership.Type)
	assert.True(t, membership.IsActive())

	membership, err = store.Find(ctx, "alice", 99)
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestMemoryStoreFindAllForUser(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	all, err := store.FindAllForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := store.FindAllForUser(ctx, "alice", MembershipStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].OrgID)

	none, err := store.FindAllForUser(ctx, "nobody", MembershipStatusActive)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreFindAllForOrg(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	all, err := store.FindAllForOrg(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := store.FindAllForOrg(ctx, 1, MembershipStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alice", active[0].UserID)
}

func TestMemoryStoreAffiliations(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "CP0001234", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "BC0007654", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	orgs, err := store.FindOrgsForEntity(ctx, "CP0001234")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, orgs)

	orgs, err = store.FindOrgsForEntity(ctx, "XX0000000")
	require.NoError(t, err)
	assert.Empty(t, orgs)

	entities, err := store.FindEntitiesForOrg(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entities, 2)

	entity, err := store.FindEntity(ctx, "BC0007654")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "Solo Corp", entity.Name)

	entity, err = store.FindEntity(ctx, "XX0000000")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestMemoryStoreSubscriptions(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	ok, err := store.HasActiveSubscription(ctx, 1, "PPR")
	require.NoError(t, err)
	assert.True(t, ok)

	// Inactive subscriptions grant no scope.
	ok, err = store.HasActiveSubscription(ctx, 1, "MHR")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.HasActiveSubscription(ctx, 2, "PPR")
	require.NoError(t, err)
	assert.False(t, ok)

	subs, err := store.FindActiveSubscriptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "PPR", subs[0].ProductCode)
}
