package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

type PlanController struct {
	plans *services.Plans
}

func NewPlanController(plans *services.Plans) *PlanController {
	return &PlanController{plans: plans}
}

type planInput struct {
	ID           string          `json:"id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	MaxFleetSize int             `json:"max_fleet_size"`
	Features     []string        `json:"features"`
	Color        string          `json:"color"`
}

func (pc *PlanController) ListPlans(c *gin.Context) {
	plans, err := pc.plans.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (pc *PlanController) UpsertPlan(c *gin.Context) {
	var input planInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Features == nil {
		input.Features = []string{}
	}
	p, err := pc.plans.Upsert(c.Request.Context(), &models.Plan{
		ID:           input.ID,
		Name:         input.Name,
		MonthlyPrice: input.MonthlyPrice,
		MaxFleetSize: input.MaxFleetSize,
		Features:     datatypes.NewJSONType(input.Features),
		Color:        input.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": p})
}
