// Package postgres implements the relationship directories over PostgreSQL.
// Every query is bounded to a single-key lookup or single join to keep
// per-request latency predictable.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounthub/accounthub/internal/directory"
)

// Store implements MembershipDirectory, AffiliationDirectory and
// ProductScopeDirectory against a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Find(ctx context.Context, userID string, orgID int) (*directory.Membership, error) {
	var m directory.Membership

	err := s.pool.QueryRow(ctx,
		`SELECT user_id, org_id, membership_type, status
		   FROM memberships
		  WHERE user_id = $1 AND org_id = $2`,
		userID, orgID,
	).Scan(&m.UserID, &m.OrgID, &m.Type, &m.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query membership: %w", err)
	}

	return &m, nil
}

func (s *Store) FindAllForUser(ctx context.Context, userID string, statuses ...directory.MembershipStatus) ([]directory.Membership, error) {
	query := `SELECT user_id, org_id, membership_type, status
	            FROM memberships
	           WHERE user_id = $1`

	args := []any{userID}

	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, statusStrings(statuses))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user memberships: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func (s *Store) FindAllForOrg(ctx context.Context, orgID int, statuses ...directory.MembershipStatus) ([]directory.Membership, error) {
	query := `SELECT user_id, org_id, membership_type, status
	            FROM memberships
	           WHERE org_id = $1`

	args := []any{orgID}

	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, statusStrings(statuses))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query org memberships: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func statusStrings(statuses []directory.MembershipStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}

	return out
}

func scanMemberships(rows pgx.Rows) ([]directory.Membership, error) {
	var out []directory.Membership

	for rows.Next() {
		var m directory.Membership

		err := rows.Scan(&m.UserID, &m.OrgID, &m.Type, &m.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memberships: %w", err)
	}

	return out, nil
}

func (s *Store) Exists(ctx context.Context, businessIdentifier string, orgID int) (bool, error) {
	var exists bool

	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1
		      FROM affiliations a
		      JOIN entities e ON e.id = a.entity_id
		     WHERE e.business_identifier = $1 AND a.org_id = $2
		 )`,
		businessIdentifier, orgID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query affiliation: %w", err)
	}

	return exists, nil
}

func (s *Store) FindOrgsForEntity(ctx context.Context, businessIdentifier string) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.org_id
		   FROM affiliations a
		   JOIN entities e ON e.id = a.entity_id
		  WHERE e.business_identifier = $1`,
		businessIdentifier,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity orgs: %w", err)
	}
	defer rows.Close()

	var orgIDs []int

	for rows.Next() {
		var orgID int

		err := rows.Scan(&orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan org id: %w", err)
		}

		orgIDs = append(orgIDs, orgID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entity orgs: %w", err)
	}

	return orgIDs, nil
}

func (s *Store) FindEntitiesForOrg(ctx context.Context, orgID int) ([]directory.Entity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.business_identifier, e.name, e.passcode_hash
		   FROM entities e
		   JOIN affiliations a ON a.entity_id = e.id
		  WHERE a.org_id = $1`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query org entities: %w", err)
	}
	defer rows.Close()

	var out []directory.Entity

	for rows.Next() {
		var e directory.Entity

		err := rows.Scan(&e.ID, &e.BusinessIdentifier, &e.Name, &e.PasscodeHash)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read org entities: %w", err)
	}

	return out, nil
}

func (s *Store) FindEntity(ctx context.Context, businessIdentifier string) (*directory.Entity, error) {
	var e directory.Entity

	err := s.pool.QueryRow(ctx,
		`SELECT id, business_identifier, name, passcode_hash
		   FROM entities
		  WHERE business_identifier = $1`,
		businessIdentifier,
	).Scan(&e.ID, &e.BusinessIdentifier, &e.Name, &e.PasscodeHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query entity: %w", err)
	}

	return &e, nil
}

func (s *Store) HasActiveSubscription(ctx context.Context, orgID int, productCode string) (bool, error) {
	var exists bool

	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1
		      FROM product_subscriptions
		     WHERE org_id = $1 AND product_code = $2 AND status = 'ACTIVE'
		 )`,
		orgID, productCode,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query product subscription: %w", err)
	}

	return exists, nil
}

func (s *Store) FindActiveSubscriptions(ctx context.Context, orgID int) ([]directory.ProductSubscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT org_id, product_code, status
		   FROM product_subscriptions
		  WHERE org_id = $1 AND status = 'ACTIVE'`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query product subscriptions: %w", err)
	}
	defer rows.Close()

	var out []directory.ProductSubscription

	for rows.Next() {
		var sub directory.ProductSubscription

		err := rows.Scan(&sub.OrgID, &sub.ProductCode, &sub.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product subscription: %w", err)
		}

		out = append(out, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product subscriptions: %w", err)
	}

	return out, nil
}
