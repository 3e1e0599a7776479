package routes

import (
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aurum_leasing/internal/controllers"
	aurumlog "aurum_leasing/internal/logger"
	"aurum_leasing/internal/middleware"
)

// Controllers is everything the router dispatches to.
type Controllers struct {
	Auth          *controllers.AuthController
	Payments      *controllers.PaymentController
	Drivers       *controllers.DriverController
	Notifications *controllers.NotificationController
	Fleet         *controllers.FleetController
	Tenants       *controllers.TenantController
	Plans         *controllers.PlanController
	Stats         *controllers.StatsController
	Health        gin.HandlerFunc
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		logger.SetLogger(
			logger.WithWriter(aurumlog.Writer()),
			logger.WithSkipPath([]string{"/healthz", "/metrics"}),
		),
		middleware.Metrics(),
	)

	r.GET("/healthz", ctl.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/stats/visits", ctl.Stats.Visits)

	AuthRoutes(api, ctl)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth())
	PaymentRoutes(authed, ctl)
	DriverRoutes(authed, ctl)
	NotificationRoutes(authed, ctl)
	FleetRoutes(authed, ctl)
	AdminRoutes(authed, ctl)

	return r
}
