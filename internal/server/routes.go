package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/accounthub/accounthub/internal/server/api"
	"github.com/accounthub/accounthub/internal/server/biz"
	"github.com/accounthub/accounthub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Auth          *api.AuthHandlers
	Authorization *api.AuthorizationHandlers
	System        *api.SystemHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithTracing(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	// Health check endpoint - no authentication required
	server.GET("/health", handlers.System.Health)

	// Passcode login issues the bearer token, so it sits outside the
	// claims-auth group.
	server.POST("/api/v1/auth/passcode", handlers.Auth.PasscodeLogin)

	apiGroup := server.Group("/api/v1", middleware.WithClaimsAuth(services.AuthService))
	{
		apiGroup.GET("/entities/:business_identifier/authorizations", handlers.Authorization.GetEntityAuthorizations)
		apiGroup.GET("/accounts/:account_id/authorizations", handlers.Authorization.GetAccountAuthorizations)
		apiGroup.GET("/accounts/:account_id/products", handlers.Authorization.GetAccountProducts)
		apiGroup.GET("/accounts/:account_id/products/:product_code/authorizations", handlers.Authorization.GetProductAuthorizations)
		apiGroup.GET("/users/:sub/authorizations", handlers.Authorization.GetUserAuthorizations)
	}
}
