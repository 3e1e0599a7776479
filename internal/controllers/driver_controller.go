package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

// --- Helper Structs for Request Bodies ---

// driverInput is what lessors send to create or update a driver.
// There is deliberately no balance field.
type driverInput struct {
	ID           string               `json:"id"`
	TenantID     string               `json:"tenant_id"`
	Name         string               `json:"name" binding:"required"`
	Phone        string               `json:"phone"`
	Rating       float64              `json:"rating"`
	ContractDate *time.Time           `json:"contract_date"`
	Data         models.DriverProfile `json:"data"`
}

// profileInput updates the driver-owned profile document.
type profileInput struct {
	ID   string               `json:"id"`
	Data models.DriverProfile `json:"data"`
}

// --- Driver Controller Functions ---

type DriverController struct {
	ledger  *services.Ledger
	drivers *services.Drivers
}

func NewDriverController(ledger *services.Ledger, drivers *services.Drivers) *DriverController {
	return &DriverController{ledger: ledger, drivers: drivers}
}

// driverID resolves ?id=, defaulting to the caller's own driver record.
func driverID(c *gin.Context) string {
	return orDefault(c.Query("id"), session(c).DriverID)
}

// Payments returns the driver's ledger, newest first.
func (dc *DriverController) Payments(c *gin.Context) {
	id := driverID(c)
	if id == "" {
		respondError(c, models.NewValidationError("id", "is required"))
		return
	}
	list, err := dc.ledger.GetDriverLedger(c.Request.Context(), id, session(c).Scope())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Me returns the driver record together with its stored balance.
func (dc *DriverController) Me(c *gin.Context) {
	id := driverID(c)
	if id == "" {
		respondError(c, models.NewValidationError("id", "is required"))
		return
	}
	d, err := dc.ledger.GetDriver(c.Request.Context(), id, session(c).Scope())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": d, "balance": d.Balance})
}

// Reconcile compares stored balances with verified payments. With ?id= it
// checks one driver, otherwise every driver of ?tenant_id= (or the caller's tenant).
func (dc *DriverController) Reconcile(c *gin.Context) {
	s := session(c)
	if id := c.Query("id"); id != "" {
		rec, err := dc.ledger.Reconcile(c.Request.Context(), id, s.Scope())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reconciliation": rec})
		return
	}

	list, err := dc.ledger.ReconcileTenant(c.Request.Context(), c.Query("tenant_id"), s.Scope())
	if err != nil {
		respondError(c, err)
		return
	}
	drifting := 0
	for _, rec := range list {
		if !rec.Consistent {
			drifting++
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "drifting": drifting})
}

func (dc *DriverController) UpdateProfile(c *gin.Context) {
	var input profileInput
	if !bindJSON(c, &input) {
		return
	}
	s := session(c)
	d, err := dc.drivers.UpdateProfile(c.Request.Context(), s.Scope(), orDefault(input.ID, s.DriverID), input.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": d})
}

// ListDrivers returns the drivers of ?tenant_id= (or the caller's tenant).
func (dc *DriverController) ListDrivers(c *gin.Context) {
	list, err := dc.drivers.List(c.Request.Context(), session(c).Scope(), c.Query("tenant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// UpsertDriver creates or updates a driver. Balances are never taken from the body.
func (dc *DriverController) UpsertDriver(c *gin.Context) {
	var input driverInput
	if !bindJSON(c, &input) {
		return
	}
	d, err := dc.drivers.Upsert(c.Request.Context(), session(c).Scope(), &models.Driver{
		ID:           input.ID,
		TenantID:     input.TenantID,
		Name:         input.Name,
		Phone:        input.Phone,
		Rating:       input.Rating,
		ContractDate: input.ContractDate,
		Data:         datatypes.NewJSONType(input.Data),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": d})
}
