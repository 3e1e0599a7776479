package routes

import (
	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
)

// AdminRoutes covers the platform level: tenants and subscription plans.
func AdminRoutes(r *gin.RouterGroup, ctl Controllers) {
	tenants := r.Group("/tenants")
	{
		tenants.GET("", middleware.RequireCapability(models.CapManageTenants), ctl.Tenants.ListTenants)
		tenants.POST("", middleware.RequireCapability(models.CapManageTenants), ctl.Tenants.CreateTenant)
		tenants.GET("/:id", middleware.RequireCapability(models.CapManageIntegration), ctl.Tenants.GetTenant)
		tenants.PATCH("/:id/status", middleware.RequireCapability(models.CapManageTenants), ctl.Tenants.SetStatus)
		tenants.PUT("/:id/integrations", middleware.RequireCapability(models.CapManageIntegration), ctl.Tenants.UpdateIntegrations)
	}

	plans := r.Group("/plans")
	{
		plans.GET("", middleware.RequireCapability(models.CapReadPlans), ctl.Plans.ListPlans)
		plans.POST("", middleware.RequireCapability(models.CapManagePlans), ctl.Plans.UpsertPlan)
	}
}
