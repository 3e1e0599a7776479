package routes

import (
	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.RouterGroup, ctl Controllers) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", ctl.Auth.LoginUser)
	}
}
