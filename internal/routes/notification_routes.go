package routes

import (
	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
)

func NotificationRoutes(r *gin.RouterGroup, ctl Controllers) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.RequireCapability(models.CapReadNotifications))
	{
		notifications.GET("", ctl.Notifications.List)
		notifications.POST("/read", ctl.Notifications.MarkRead)
		notifications.POST("/clear", ctl.Notifications.Clear)
	}
}
