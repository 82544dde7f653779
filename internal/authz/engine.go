package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/accounthub/accounthub/internal/directory"
	"github.com/accounthub/accounthub/internal/log"
	"github.com/accounthub/accounthub/internal/metrics"
)

// Engine evaluates role requirements against a principal and the relationship
// directories. It performs no mutation; every call is an independent
// request-scoped evaluation.
//
// CheckAuth returns nil (allow) or ErrForbidden (deny). It never returns a
// boolean; callers rely on fail-fast semantics so omitted checks default to
// deny.
type Engine struct {
	memberships  directory.MembershipDirectory
	affiliations directory.AffiliationDirectory
	products     directory.ProductScopeDirectory
}

// NewEngine builds a decision engine over the given directories.
func NewEngine(
	memberships directory.MembershipDirectory,
	affiliations directory.AffiliationDirectory,
	products directory.ProductScopeDirectory,
) *Engine {
	return &Engine{
		memberships:  memberships,
		affiliations: affiliations,
		products:     products,
	}
}

// CheckAuth evaluates the requirement in fixed precedence order: disabled-role
// short circuit, staff branch, system branch, membership branch. The first
// matching branch decides.
//
// Directory errors propagate unchanged; they are infrastructure failures, not
// denials, and must not surface as 403.
func (e *Engine) CheckAuth(ctx context.Context, principal *PrincipalContext, req Requirement) error {
	err := e.evaluate(ctx, principal, req)
	e.record(ctx, principal, req, err)

	return err
}

// decisionOutcome tags the metric outcome. Denials and errors are separated so
// a directory outage or a misconfigured call site never reads as a wave of
// 403s.
func decisionOutcome(err error) string {
	switch {
	case err == nil:
		return "allow"
	case errors.Is(err, ErrForbidden):
		return "deny"
	default:
		return "error"
	}
}

func (e *Engine) record(ctx context.Context, principal *PrincipalContext, req Requirement, err error) {
	outcome := decisionOutcome(err)

	metrics.RecordDecision(ctx, principal.Kind().String(), outcome)

	if log.DebugEnabled(ctx) {
		fields := []log.Field{
			log.String("principal", principal.String()),
			log.String("decision", outcome),
		}
		if req.OrgID != nil {
			fields = append(fields, log.Int("org_id", *req.OrgID))
		}

		if req.BusinessIdentifier != "" {
			fields = append(fields, log.String("business_identifier", req.BusinessIdentifier))
		}

		if err != nil {
			fields = append(fields, log.Cause(err))
		}

		log.Debug(ctx, "authz: decision", fields...)
	}
}

func (e *Engine) evaluate(ctx context.Context, principal *PrincipalContext, req Requirement) error {
	// Disabled roles override every other branch, including staff.
	if principal.HasAnyRole(req.Disabled...) {
		return fmt.Errorf("%w: principal role is disabled for this operation", ErrForbidden)
	}

	switch {
	case principal.IsStaff():
		return e.checkStaff(ctx, principal, req)
	case principal.IsSystem():
		return e.checkSystem(ctx, principal, req)
	default:
		return e.checkMembership(ctx, principal, req)
	}
}

func (e *Engine) checkStaff(ctx context.Context, principal *PrincipalContext, req Requirement) error {
	// Staff never run system-required checks. This combination is a bug at
	// the call site and must stay loud.
	if req.SystemRequired {
		return ErrStaffSystemRequirement
	}

	// Staff bypass unscoped checks when no role list constrains them.
	if req.unconstrained() {
		return nil
	}

	roleMatch := false

	for _, role := range req.OneOf {
		if principal.HasRole(role) {
			roleMatch = true
			break
		}
	}

	if req.Equals != "" && principal.HasRole(req.Equals) {
		roleMatch = true
	}

	if !roleMatch {
		return fmt.Errorf("%w: staff principal lacks required role", ErrForbidden)
	}

	// An org target together with a role list models staff acting with
	// delegated org authority: the staff user must also hold a matching
	// membership on that org.
	if req.OrgID != nil {
		membership, err := e.memberships.Find(ctx, principal.SubjectID(), *req.OrgID)
		if err != nil {
			return err
		}

		if membership == nil || !membership.IsActive() {
			return fmt.Errorf("%w: staff principal has no membership on org %d", ErrForbidden, *req.OrgID)
		}

		if !req.matchesMembership(Role(membership.Type)) {
			return fmt.Errorf("%w: staff membership on org %d does not satisfy requirement", ErrForbidden, *req.OrgID)
		}
	}

	return nil
}

func (e *Engine) checkSystem(ctx context.Context, principal *PrincipalContext, req Requirement) error {
	scope := principal.ProductScope()

	// Full-trust service account bypass.
	if scope == ProductScopeAll {
		return nil
	}

	if scope == "" {
		return fmt.Errorf("%w: service account has no product scope", ErrForbidden)
	}

	if req.OrgID != nil {
		ok, err := e.products.HasActiveSubscription(ctx, *req.OrgID, scope)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%w: org %d has no active %s subscription", ErrForbidden, *req.OrgID, scope)
		}

		return nil
	}

	if req.BusinessIdentifier != "" {
		orgIDs, err := e.affiliations.FindOrgsForEntity(ctx, req.BusinessIdentifier)
		if err != nil {
			return err
		}

		for _, orgID := range orgIDs {
			ok, err := e.products.HasActiveSubscription(ctx, orgID, scope)
			if err != nil {
				return err
			}

			if ok {
				return nil
			}
		}

		return fmt.Errorf("%w: no affiliated org holds an active %s subscription", ErrForbidden, scope)
	}

	return fmt.Errorf("%w: scoped service account requires an org or entity target", ErrForbidden)
}

func (e *Engine) checkMembership(ctx context.Context, principal *PrincipalContext, req Requirement) error {
	// Nothing to evaluate against: fail closed.
	if req.unconstrained() && req.untargeted() {
		return fmt.Errorf("%w: no requirement to evaluate", ErrForbidden)
	}

	if req.untargeted() {
		return fmt.Errorf("%w: no org or entity target to resolve a relationship", ErrForbidden)
	}

	membership, err := e.resolveMembership(ctx, principal, req)
	if err != nil {
		return err
	}

	// A target that resolves to nothing is indistinguishable from no
	// relationship, so existence is not leaked to unauthorized callers.
	if membership == nil {
		return fmt.Errorf("%w: no org relationship resolves for principal", ErrForbidden)
	}

	if !req.matchesMembership(Role(membership.Type)) {
		return fmt.Errorf("%w: membership role %s does not satisfy requirement", ErrForbidden, membership.Type)
	}

	return nil
}

func (e *Engine) resolveMembership(ctx context.Context, principal *PrincipalContext, req Requirement) (*directory.Membership, error) {
	if req.OrgID != nil {
		membership, err := e.memberships.Find(ctx, principal.SubjectID(), *req.OrgID)
		if err != nil {
			return nil, err
		}

		if membership != nil && membership.IsActive() {
			return membership, nil
		}

		return nil, nil
	}

	// Affiliated-entity access is satisfied by any org membership along any
	// affiliation path, not a specific org.
	orgIDs, err := e.affiliations.FindOrgsForEntity(ctx, req.BusinessIdentifier)
	if err != nil {
		return nil, err
	}

	for _, orgID := range orgIDs {
		membership, err := e.memberships.Find(ctx, principal.SubjectID(), orgID)
		if err != nil {
			return nil, err
		}

		if membership != nil && membership.IsActive() {
			return membership, nil
		}
	}

	return nil, nil
}
