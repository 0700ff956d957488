package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/insforge/core/internal/infrastructure/wire"
	"github.com/insforge/core/internal/shared/middleware"
)

// RegisterRoutes mounts the spec §6 HTTP surface on router, grounded on
// the teacher's routes.SetupRoutes (one function, one call site in
// cmd/server, gin route groups per auth tier).
func RegisterRoutes(router *gin.Engine, app *wire.App) {
	h := New(app)
	az := app.Authz

	router.POST("/auth/users", h.RegisterUser)
	router.POST("/auth/sessions", h.IssueUserSession)
	router.POST("/admin/register", h.RegisterAdmin)
	router.POST("/admin/sign-in", h.SignInAdmin)
	router.GET("/me", h.Me)
	router.GET("/auth/oauth/:provider", h.BeginOAuth)
	router.GET("/auth/oauth/:provider/callback", h.CompleteOAuth)

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(az))
	{
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/bulk-delete", h.BulkDeleteUsers)
		admin.GET("/audit", h.QueryAudit)
	}

	router.POST("/auth/oauth/reload", middleware.AdminAuth(az), h.ReloadOAuth)
	router.PUT("/auth/oauth/:provider", middleware.AdminAuth(az), h.UpdateOAuthConfig)

	secrets := router.Group("/secrets")
	secrets.Use(middleware.AdminAuth(az))
	{
		secrets.POST("", h.CreateSecret)
		secrets.GET("", h.ListSecrets)
		secrets.PATCH("/:id", h.UpdateSecret)
		secrets.POST("/:id/rotate", h.RotateSecret)
	}
}
