package conf

import (
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/log"
	"github.com/accounthub/accounthub/internal/metrics"
	"github.com/accounthub/accounthub/internal/server"
	"github.com/accounthub/accounthub/internal/server/biz"
	"github.com/accounthub/accounthub/internal/server/db"
)

// Module loads the configuration once and exposes each section as its own
// type so downstream constructors depend only on the section they need.
var Module = fx.Module("conf",
	fx.Provide(
		Load,
		func(c Config) server.Config { return c.APIServer },
		func(c Config) db.Config { return c.DB },
		func(c Config) log.Config { return c.Log },
		func(c Config) biz.AuthConfig { return c.Auth },
		func(c Config) metrics.Config { return c.Metrics },
	),
)
