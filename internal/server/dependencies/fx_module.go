package dependencies

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/directory"
	"github.com/accounthub/accounthub/internal/directory/postgres"
	"github.com/accounthub/accounthub/internal/log"
	"github.com/accounthub/accounthub/internal/server/db"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(db.NewPool),
	fx.Provide(postgres.NewStore),
	fx.Provide(func(store *postgres.Store) directory.MembershipDirectory { return store }),
	fx.Provide(func(store *postgres.Store) directory.AffiliationDirectory { return store }),
	fx.Provide(func(store *postgres.Store) directory.ProductScopeDirectory { return store }),
	fx.Invoke(func(lc fx.Lifecycle, pool *pgxpool.Pool) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				pool.Close()
				return nil
			},
		})
	}),
)
