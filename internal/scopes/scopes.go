// Package scopes maps org membership roles to the capability tags surfaced by
// the authorization query service.
package scopes

import (
	"slices"

	"github.com/accounthub/accounthub/internal/directory"
)

// CapabilitySlug represents a capability granted within an org or on an
// affiliated entity.
type CapabilitySlug string

// Available capabilities in the system.
const (
	// CapabilityView read org and entity data.
	CapabilityView CapabilitySlug = "view"
	// CapabilityEdit change org and entity data.
	CapabilityEdit CapabilitySlug = "edit"
	// CapabilityInvite invite users to the org.
	CapabilityInvite CapabilitySlug = "invite"
	// CapabilityManageMembers approve, remove and deactivate members.
	CapabilityManageMembers CapabilitySlug = "manage_members"
	// CapabilityChangeRole change the role of another member.
	CapabilityChangeRole CapabilitySlug = "change_role"
	// CapabilityManageSettings manage org settings and subscriptions.
	CapabilityManageSettings CapabilitySlug = "manage_settings"
)

// membershipCapabilities defines the ordered capability list per membership
// role. Order is part of the API contract; new capabilities append per role.
var membershipCapabilities = map[directory.MembershipType][]CapabilitySlug{
	directory.MembershipTypeAdmin: {
		CapabilityView,
		CapabilityEdit,
		CapabilityInvite,
		CapabilityManageMembers,
		CapabilityChangeRole,
		CapabilityManageSettings,
	},
	directory.MembershipTypeCoordinator: {
		CapabilityView,
		CapabilityEdit,
		CapabilityInvite,
	},
	directory.MembershipTypeUser: {
		CapabilityView,
		CapabilityEdit,
	},
}

// ForMembership returns the ordered capability tags for a membership role.
// Unknown roles get no capabilities.
func ForMembership(membershipType directory.MembershipType) []string {
	capabilities, ok := membershipCapabilities[membershipType]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		out = append(out, string(c))
	}

	return out
}

// AllCapabilities returns every capability slug as strings.
func AllCapabilities() []string {
	seen := make(map[CapabilitySlug]bool)

	var out []string

	for _, membershipType := range []directory.MembershipType{
		directory.MembershipTypeAdmin,
		directory.MembershipTypeCoordinator,
		directory.MembershipTypeUser,
	} {
		for _, c := range membershipCapabilities[membershipType] {
			if !seen[c] {
				seen[c] = true

				out = append(out, string(c))
			}
		}
	}

	return out
}

// IsValidCapability reports whether the tag is a known capability.
func IsValidCapability(tag string) bool {
	return slices.Contains(AllCapabilities(), tag)
}
