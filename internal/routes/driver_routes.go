package routes

import (
	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
)

func DriverRoutes(r *gin.RouterGroup, ctl Controllers) {
	driver := r.Group("/driver")
	{
		driver.GET("/payments", middleware.RequireCapability(models.CapReadLedger), ctl.Drivers.Payments)
		driver.GET("/me", middleware.RequireCapability(models.CapReadLedger), ctl.Drivers.Me)
		driver.PUT("/profile", middleware.RequireCapability(models.CapEditProfile), ctl.Drivers.UpdateProfile)
		driver.GET("/reconcile", middleware.RequireCapability(models.CapReconcile), ctl.Drivers.Reconcile)
	}

	drivers := r.Group("/drivers")
	drivers.Use(middleware.RequireCapability(models.CapManageDrivers))
	{
		drivers.GET("", ctl.Drivers.ListDrivers)
		drivers.POST("", ctl.Drivers.UpsertDriver)
	}
}
