package api

import "go.uber.org/fx"

var Module = fx.Module("api",
	fx.Provide(NewAuthHandlers),
	fx.Provide(NewAuthorizationHandlers),
	fx.Provide(NewSystemHandlers),
)
