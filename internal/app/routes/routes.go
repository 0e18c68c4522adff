package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yigit/campusfound/internal/app/controllers"
	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/middleware"
)

// Controllers groups every HTTP controller of the API
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Item         *controllers.ItemController
	Claim        *controllers.ClaimController
	Notification *controllers.NotificationController
	ActivityLog  *controllers.ActivityLogController
}

// HealthCheck reports liveness of the process and its dependencies
type HealthCheck func(ctx *gin.Context) error

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, health HealthCheck) {
	router.NoRoute(middleware.NoRoute)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		if health != nil {
			if err := health(ctx); err != nil {
				ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Unhealthy")))
				return
			}
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok", "time": time.Now().UTC()}, ""))
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.GET("/me", authMiddleware.JWTAuth(), c.Auth.Me)
	}

	// --- Listings, visible to anonymous callers ---
	items := v1.Group("/items")
	{
		items.GET("/:kind", authMiddleware.OptionalAuth(), c.Item.List)
		items.GET("/:kind/:id", authMiddleware.OptionalAuth(), c.Item.Get)

		items.POST("/:kind", authMiddleware.JWTAuth(), c.Item.Submit)
		items.PUT("/:kind/:id", authMiddleware.JWTAuth(), c.Item.Update)
		items.DELETE("/:kind/:id", authMiddleware.JWTAuth(), c.Item.Delete)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	claims := authenticated.Group("/claims")
	{
		claims.POST("", c.Claim.Submit)
		claims.GET("/:id", c.Claim.Get)
	}

	me := authenticated.Group("/me")
	{
		me.GET("/items", c.Item.ListMine)
		me.GET("/claims", c.Claim.ListMine)
		me.GET("/notifications", c.Notification.List)
		me.GET("/notifications/ws", c.Notification.Stream)
		me.POST("/notifications/read-all", c.Notification.MarkAllRead)
		me.POST("/notifications/:id/read", c.Notification.MarkRead)
	}

	// Admin checks happen in the services, which see the current role
	admin := authenticated.Group("/admin")
	{
		admin.POST("/bootstrap", c.User.Bootstrap)
		admin.PUT("/users/:id/role", c.User.SetRole)

		admin.GET("/items", c.Item.ListForReview)
		admin.POST("/items/:kind/:id/approve", c.Item.Approve)
		admin.POST("/items/:kind/:id/reject", c.Item.Reject)
		admin.POST("/items/:kind/:id/archive", c.Item.Archive)

		admin.GET("/claims", c.Claim.ListForReview)
		admin.POST("/claims/:id/approve", c.Claim.Approve)
		admin.POST("/claims/:id/reject", c.Claim.Reject)

		admin.GET("/activity-logs", c.ActivityLog.List)
	}
}
