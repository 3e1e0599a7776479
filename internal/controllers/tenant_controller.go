package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

type TenantController struct {
	tenants *services.Tenants
}

func NewTenantController(tenants *services.Tenants) *TenantController {
	return &TenantController{tenants: tenants}
}

type tenantInput struct {
	ID                  string                     `json:"id"`
	CompanyName         string                     `json:"company_name" binding:"required"`
	PlanID              *string                    `json:"plan_id"`
	Status              string                     `json:"status"`
	IntegrationSettings models.IntegrationSettings `json:"integration_settings"`
}

type statusInput struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// ListTenants lists every tenant on the platform.
func (tc *TenantController) ListTenants(c *gin.Context) {
	tenants, err := tc.tenants.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tenants})
}

func (tc *TenantController) GetTenant(c *gin.Context) {
	t, err := tc.tenants.Get(c.Request.Context(), session(c).Scope(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": t})
}

func (tc *TenantController) CreateTenant(c *gin.Context) {
	var input tenantInput
	if !bindJSON(c, &input) {
		return
	}
	t, err := tc.tenants.Create(c.Request.Context(), &models.Tenant{
		ID:                  input.ID,
		CompanyName:         input.CompanyName,
		PlanID:              input.PlanID,
		Status:              models.TenantStatus(input.Status),
		IntegrationSettings: datatypes.NewJSONType(input.IntegrationSettings),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tenant": t})
}

// SetStatus activates or suspends a tenant.
func (tc *TenantController) SetStatus(c *gin.Context) {
	var input statusInput
	if !bindJSON(c, &input) {
		return
	}
	t, err := tc.tenants.SetStatus(c.Request.Context(), c.Param("id"), models.TenantStatus(input.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": t})
}

func (tc *TenantController) UpdateIntegrations(c *gin.Context) {
	var input models.IntegrationSettings
	if !bindJSON(c, &input) {
		return
	}
	t, err := tc.tenants.UpdateIntegrations(c.Request.Context(), session(c).Scope(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": t})
}
