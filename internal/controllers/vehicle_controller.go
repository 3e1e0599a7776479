package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

type FleetController struct {
	fleet *services.Fleet
}

func NewFleetController(fleet *services.Fleet) *FleetController {
	return &FleetController{fleet: fleet}
}

type vehicleInput struct {
	ID       string             `json:"id"`
	Plate    string             `json:"plate" binding:"required"`
	Brand    string             `json:"brand" binding:"required"`
	Model    string             `json:"model" binding:"required"`
	Year     int                `json:"year" binding:"omitempty,gte=1990,lte=2100"`
	Status   string             `json:"status"`
	TenantID string             `json:"tenant_id"`
	DriverID *string            `json:"driver_id"`
	Data     models.VehicleData `json:"data"`
}

// ListVehicles returns the fleet of ?tenant_id= (or the caller's tenant).
func (fc *FleetController) ListVehicles(c *gin.Context) {
	vehicles, err := fc.fleet.List(c.Request.Context(), session(c).Scope(), c.Query("tenant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// UpsertVehicle creates or updates a vehicle, subject to the tenant's plan limit.
func (fc *FleetController) UpsertVehicle(c *gin.Context) {
	var input vehicleInput
	if !bindJSON(c, &input) {
		return
	}
	s := session(c)

	v, err := fc.fleet.Upsert(c.Request.Context(), s.Scope(), &models.Vehicle{
		ID:       input.ID,
		Plate:    input.Plate,
		Brand:    input.Brand,
		Model:    input.Model,
		Year:     input.Year,
		Status:   models.VehicleStatus(input.Status),
		TenantID: orDefault(input.TenantID, s.TenantID),
		DriverID: input.DriverID,
		Data:     datatypes.NewJSONType(input.Data),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": v})
}

// Map renders the last known vehicle positions as a GeoJSON FeatureCollection.
func (fc *FleetController) Map(c *gin.Context) {
	fcol, err := fc.fleet.Map(c.Request.Context(), session(c).Scope(), c.Query("tenant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fcol)
}
