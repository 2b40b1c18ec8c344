package balance

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
	balances := r.Group("/balances")
	balances.Use(auth)
	balances.Use(middleware.ContextLogger(logger))
	{
		balances.GET("",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(rbacService, "balance", "read"),
			handler.GetMine,
		)
	}

	admin := r.Group("/admin/users/:userId")
	admin.Use(auth)
	admin.Use(middleware.ContextLogger(logger))
	{
		admin.PUT("/balance",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "balance", "update"),
			idempotency,
			handler.Set,
		)
		admin.GET("/balance-entries",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "balance", "update"),
			handler.ListEntries,
		)
	}
}
