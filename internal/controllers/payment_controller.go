package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
)

type PaymentController struct {
	ledger *services.Ledger
}

func NewPaymentController(ledger *services.Ledger) *PaymentController {
	return &PaymentController{ledger: ledger}
}

type reportInput struct {
	DriverID string                 `json:"driver_id"`
	TenantID string                 `json:"tenant_id"`
	Amount   decimal.Decimal        `json:"amount"`
	Type     string                 `json:"type"`
	Metadata models.PaymentMetadata `json:"metadata"`
}

// Report records a pending payment. Drivers may omit driver_id and tenant_id.
func (pc *PaymentController) Report(c *gin.Context) {
	var input reportInput
	if !bindJSON(c, &input) {
		return
	}
	s := session(c)

	p, err := pc.ledger.ReportPayment(c.Request.Context(), services.ReportInput{
		DriverID: orDefault(input.DriverID, s.DriverID),
		TenantID: orDefault(input.TenantID, s.TenantID),
		Amount:   input.Amount,
		Type:     input.Type,
		Metadata: input.Metadata,
		Scope:    s.Scope(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "payment_id": p.ID, "payment": p})
}

type verifyInput struct {
	PaymentID string          `json:"payment_id" binding:"required"`
	DriverID  string          `json:"driver_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

func (pc *PaymentController) Verify(c *gin.Context) {
	var input verifyInput
	if !bindJSON(c, &input) {
		return
	}
	p, err := pc.ledger.VerifyPayment(c.Request.Context(), services.VerifyInput{
		PaymentID: input.PaymentID,
		DriverID:  input.DriverID,
		Amount:    input.Amount,
		Scope:     session(c).Scope(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": p})
}

type rejectInput struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Reason    string `json:"reason"`
}

func (pc *PaymentController) Reject(c *gin.Context) {
	var input rejectInput
	if !bindJSON(c, &input) {
		return
	}
	p, err := pc.ledger.RejectPayment(c.Request.Context(), services.RejectInput{
		PaymentID: input.PaymentID,
		Reason:    input.Reason,
		Scope:     session(c).Scope(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": p})
}

// Pending lists the review queue, newest first.
func (pc *PaymentController) Pending(c *gin.Context) {
	list, err := pc.ledger.ListPending(c.Request.Context(), c.Query("tenant_id"), session(c).Scope())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
