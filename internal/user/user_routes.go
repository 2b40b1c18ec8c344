package user

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
	logger *zap.Logger,
) {
	users := r.Group("/users")
	users.Use(auth)
	users.Use(middleware.ContextLogger(logger))
	{
		users.GET("/me", middleware.RateLimitByUser(5, 10), handler.GetMe)
	}

	team := r.Group("/team")
	team.Use(auth)
	team.Use(middleware.ContextLogger(logger))
	{
		team.GET("/members",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(rbacService, "team", "read"),
			handler.TeamMembers,
		)
	}
}
