package directory

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory implementation of all three
// directories. It backs the engine and query-service tests and local wiring.
type MemoryStore struct {
	mu sync.RWMutex

	memberships   []Membership
	entities      map[string]Entity
	affiliations  []Affiliation
	subscriptions []ProductSubscription
}

// NewMemoryStore builds an empty in-memory directory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]Entity),
	}
}

// AddMembership seeds a membership record.
func (s *MemoryStore) AddMembership(m Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, m)
}

// AddEntity seeds an entity record.
func (s *MemoryStore) AddEntity(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.BusinessIdentifier] = e
}

// AddAffiliation seeds an affiliation between an entity and an org.
func (s *MemoryStore) AddAffiliation(a Affiliation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.affiliations = append(s.affiliations, a)
}

// AddSubscription seeds a product subscription record.
func (s *MemoryStore) AddSubscription(sub ProductSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
}

func (s *MemoryStore) Find(_ context.Context, userID string, orgID int) (*Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.UserID == userID && m.OrgID == orgID {
			found := m
			return &found, nil
		}
	}

	return nil, nil
}

func (s *MemoryStore) FindAllForUser(_ context.Context, userID string, statuses ...MembershipStatus) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Membership

	for _, m := range s.memberships {
		if m.UserID == userID && matchStatus(m.Status, statuses) {
			out = append(out, m)
		}
	}

	return out, nil
}

func (s *MemoryStore) FindAllForOrg(_ context.Context, orgID int, statuses ...MembershipStatus) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Membership

	for _, m := range s.memberships {
		if m.OrgID == orgID && matchStatus(m.Status, statuses) {
			out = append(out, m)
		}
	}

	return out, nil
}

func matchStatus(status MembershipStatus, statuses []MembershipStatus) bool {
	if len(statuses) == 0 {
		return true
	}

	for _, s := range statuses {
		if s == status {
			return true
		}
	}

	return false
}

func (s *MemoryStore) Exists(_ context.Context, businessIdentifier string, orgID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[businessIdentifier]
	if !ok {
		return false, nil
	}

	for _, a := range s.affiliations {
		if a.EntityID == entity.ID && a.OrgID == orgID {
			return true, nil
		}
	}

	return false, nil
}

func (s *MemoryStore) FindOrgsForEntity(_ context.Context, businessIdentifier string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[businessIdentifier]
	if !ok {
		return nil, nil
	}

	var orgs []int

	for _, a := range s.affiliations {
		if a.EntityID == entity.ID {
			orgs = append(orgs, a.OrgID)
		}
	}

	return orgs, nil
}

func (s *MemoryStore) FindEntitiesForOrg(_ context.Context, orgID int) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity

	for _, a := range s.affiliations {
		if a.OrgID != orgID {
			continue
		}

		for _, e := range s.entities {
			if e.ID == a.EntityID {
				out = append(out, e)
				break
			}
		}
	}

	return out, nil
}

func (s *MemoryStore) FindEntity(_ context.Context, businessIdentifier string) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[businessIdentifier]
	if !ok {
		return nil, nil
	}

	return &entity, nil
}

func (s *MemoryStore) HasActiveSubscription(_ context.Context, orgID int, productCode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscriptions {
		if sub.OrgID == orgID && sub.ProductCode == productCode && sub.Status == SubscriptionStatusActive {
			return true, nil
		}
	}

	return false, nil
}

func (s *MemoryStore) FindActiveSubscriptions(_ context.Context, orgID int) ([]ProductSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ProductSubscription

	for _, sub := range s.subscriptions {
		if sub.OrgID == orgID && sub.Status == SubscriptionStatusActive {
			out = append(out, sub)
		}
	}

	return out, nil
}
