package routes

import (
	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
)

func FleetRoutes(r *gin.RouterGroup, ctl Controllers) {
	fleet := r.Group("/fleet")
	fleet.Use(middleware.RequireCapability(models.CapManageFleet))
	{
		fleet.GET("", ctl.Fleet.ListVehicles)
		fleet.POST("", ctl.Fleet.UpsertVehicle)
		fleet.GET("/map", ctl.Fleet.Map)
	}
}
