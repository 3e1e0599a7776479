package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

type AuthController struct {
	auth *services.Auth
}

func NewAuthController(auth *services.Auth) *AuthController {
	return &AuthController{auth: auth}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser exchanges email and password for a signed session token.
func (ac *AuthController) LoginUser(c *gin.Context) {
	var body loginInput
	if !bindJSON(c, &body) {
		return
	}

	user, err := ac.auth.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(*user)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("could not generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  prepareUserResponse(*user),
	})
}

func prepareUserResponse(user models.User) gin.H {
	responseUser := gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"role":         user.Role,
		"capabilities": capabilityNames(user.Role),
		"created_at":   user.CreatedAt,
	}
	if user.TenantID != nil {
		responseUser["tenant_id"] = *user.TenantID
	}
	if user.DriverID != nil {
		responseUser["driver_id"] = *user.DriverID
	}
	return responseUser
}

func capabilityNames(role models.Role) []string {
	names := make([]string, 0, len(role.Capabilities()))
	for c := range role.Capabilities() {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
