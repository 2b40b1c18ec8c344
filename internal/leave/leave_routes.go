package leave

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
	logger *zap.Logger,
) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)
	leaves.Use(middleware.ContextLogger(logger))
	{
		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			idempotency,
			handler.Apply,
		)
		leaves.DELETE("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "cancel"),
			handler.Cancel,
		)
		leaves.GET("/history",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.History,
		)
	}

	team := r.Group("/team")
	team.Use(auth)
	team.Use(middleware.ContextLogger(logger))
	{
		team.GET("/leaves", middleware.RBACAuthorize(rbacService, "team", "read"), handler.TeamLeaves)
		team.GET("/calendar", middleware.RBACAuthorize(rbacService, "team", "read"), handler.TeamCalendar)
		team.GET("/leaves/:id", middleware.RBACAuthorize(rbacService, "team", "read"), handler.TeamLeave)
		team.PUT("/leaves/:id",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "team", "decide"),
			handler.Decide,
		)
	}

	admin := r.Group("/admin/leaves")
	admin.Use(auth)
	admin.Use(middleware.ContextLogger(logger))
	{
		admin.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "override"),
			handler.Override,
		)
	}
}
