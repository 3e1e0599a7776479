package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"aurum_leasing/internal/services"
)

type NotificationController struct {
	notifications *services.Notifications
}

func NewNotificationController(n *services.Notifications) *NotificationController {
	return &NotificationController{notifications: n}
}

func queryFrom(c *gin.Context) services.NotificationQuery {
	return services.NotificationQuery{
		Role:        c.Query("role"),
		UserID:      c.Query("user_id"),
		IncludeRead: cast.ToBool(c.Query("all")),
		Limit:       cast.ToInt(c.Query("limit")),
	}
}

// List returns the caller's inbox, unread only unless ?all=true.
func (nc *NotificationController) List(c *gin.Context) {
	list, err := nc.notifications.List(c.Request.Context(), session(c), queryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

type markReadInput struct {
	ID string `json:"id" binding:"required"`
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	var input markReadInput
	if !bindJSON(c, &input) {
		return
	}
	if err := nc.notifications.MarkRead(c.Request.Context(), session(c), input.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clear acknowledges every unread notification of the inbox. Nothing is deleted.
func (nc *NotificationController) Clear(c *gin.Context) {
	n, err := nc.notifications.ClearAll(c.Request.Context(), session(c), queryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": n})
}
