package routes

import (
	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
)

func PaymentRoutes(r *gin.RouterGroup, ctl Controllers) {
	payments := r.Group("/payments")
	{
		payments.POST("/report", middleware.RequireCapability(models.CapReportPayment), ctl.Payments.Report)
		payments.POST("/verify", middleware.RequireCapability(models.CapReviewPayments), ctl.Payments.Verify)
		payments.POST("/reject", middleware.RequireCapability(models.CapReviewPayments), ctl.Payments.Reject)
		payments.GET("/pending", middleware.RequireCapability(models.CapReviewPayments), ctl.Payments.Pending)
	}
}
