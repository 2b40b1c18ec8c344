package rbac

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.GET("/permissions", handler.Mine)
		group.POST("/enforce",
			middleware.RBACAuthorize(service, ResourceAudit, ActionRead),
			handler.Enforce,
		)
	}
}
