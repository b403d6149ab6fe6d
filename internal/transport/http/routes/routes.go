package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/handlers"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/middleware"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Logger      *zap.Logger
	Issuer      *security.SessionIssuer
	Auth        *handlers.AuthHandler
	Password    *handlers.PasswordHandler
	CurrentUser *handlers.CurrentUserHandler
	Health      *handlers.HealthHandler
	Metrics     *middleware.HTTPMetrics
}

// Register builds the gin engine and mounts all routes.
func Register(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		engine.Use(deps.Metrics.Handler())
	}

	engine.GET("/healthz", deps.Health.Status)
	engine.GET("/readyz", deps.Health.Readiness)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := engine.Group("/api/v1/auth")
	{
		auth.POST("/signin", deps.Auth.SignIn)
		auth.PUT("/forgot-password", deps.Password.ForgotPassword)
		auth.PUT("/reset-password/:token", deps.Password.ResetPassword)

		protected := auth.Group("")
		protected.Use(middleware.RequireAuth(deps.Issuer))
		{
			protected.PUT("/change-password", deps.Password.ChangePassword)
			protected.GET("/currentuser", deps.CurrentUser.CurrentUser)
			protected.GET("/refresh-token", deps.CurrentUser.RefreshToken)
		}
	}

	return engine
}
