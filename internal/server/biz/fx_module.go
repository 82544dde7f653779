package biz

import (
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/authz"
	"github.com/accounthub/accounthub/internal/directory"
)

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewAuthorizationService),
	fx.Provide(func(
		memberships directory.MembershipDirectory,
		affiliations directory.AffiliationDirectory,
		products directory.ProductScopeDirectory,
	) *authz.Engine {
		return authz.NewEngine(memberships, affiliations, products)
	}),
)
