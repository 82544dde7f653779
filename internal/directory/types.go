package directory

// MembershipType is the role a user holds within an org. Closed set; only
// ADMIN and COORDINATOR may authorize organizational actions.
type MembershipType string

const (
	MembershipTypeAdmin       MembershipType = "ADMIN"
	MembershipTypeCoordinator MembershipType = "COORDINATOR"
	MembershipTypeUser        MembershipType = "USER"
)

// MembershipStatus is the lifecycle state of a membership. Memberships are
// never physically deleted, they only transition status.
type MembershipStatus string

const (
	MembershipStatusActive             MembershipStatus = "ACTIVE"
	MembershipStatusPendingApproval    MembershipStatus = "PENDING_APPROVAL"
	MembershipStatusPendingStaffReview MembershipStatus = "PENDING_STAFF_REVIEW"
	MembershipStatusInactive           MembershipStatus = "INACTIVE"
	MembershipStatusRejected           MembershipStatus = "REJECTED"
)

// SubscriptionStatus is the lifecycle state of a product subscription. Only
// ACTIVE subscriptions grant scope.
type SubscriptionStatus string

const (
	SubscriptionStatusActive             SubscriptionStatus = "ACTIVE"
	SubscriptionStatusInactive           SubscriptionStatus = "INACTIVE"
	SubscriptionStatusPendingStaffReview SubscriptionStatus = "PENDING_STAFF_REVIEW"
	SubscriptionStatusRejected           SubscriptionStatus = "REJECTED"
)

// Membership is the relationship and role of a user within an org. A user may
// hold memberships in many orgs, but exactly one effective role per org.
type Membership struct {
	UserID string
	OrgID  int
	Type   MembershipType
	Status MembershipStatus
}

// IsActive reports whether the membership currently grants access.
func (m Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}

// Entity is a registered business identified by a business identifier.
// PasscodeHash backs the legacy passcode login mode.
type Entity struct {
	ID                 int
	BusinessIdentifier string
	Name               string
	PasscodeHash       string
}

// Affiliation links an entity to an org. An entity may be affiliated to
// multiple orgs simultaneously, and an org to many entities.
type Affiliation struct {
	EntityID int
	OrgID    int
}

// ProductSubscription is an org's enabled add-on capability, independently
// active or inactive of membership.
type ProductSubscription struct {
	OrgID       int
	ProductCode string
	Status      SubscriptionStatus
}
