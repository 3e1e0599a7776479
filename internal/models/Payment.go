package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// Amounts and balances go over the wire as JSON numbers, like the dashboard expects.
	decimal.MarshalJSONWithoutQuotes = true
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentVerified || s == PaymentRejected
}

// CanTransitionTo enforces pending -> {verified | rejected}, nothing else.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && next.Terminal()
}

type PaymentType string

const (
	PaymentRent    PaymentType = "renta"
	PaymentDeposit PaymentType = "fianza"
	PaymentFine    PaymentType = "multa"
	PaymentOther   PaymentType = "otro"
)

var paymentTypeAliases = map[string]PaymentType{
	"renta":   PaymentRent,
	"rent":    PaymentRent,
	"fianza":  PaymentDeposit,
	"deposit": PaymentDeposit,
	"multa":   PaymentFine,
	"fine":    PaymentFine,
	"otro":    PaymentOther,
	"other":   PaymentOther,
}

// ParsePaymentType normalises the UI/English spellings. An empty value means rent,
// which is what the driver dashboard preselects.
func ParsePaymentType(raw string) (PaymentType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return PaymentRent, nil
	}
	if t, ok := paymentTypeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown payment type %q", raw)
}

// PaymentMetadata is the free-form part of a ledger row, stored as JSONB.
type PaymentMetadata struct {
	ReceiptURL        string `json:"receipt_url,omitempty"`
	Reference         string `json:"reference,omitempty"`
	TargetInstallment int    `json:"target_installment,omitempty"`
	PaidOn            string `json:"paid_on,omitempty"`
	Note              string `json:"note,omitempty"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
}

// Payment is one row of the append-only ledger. Only Status (and the metadata
// written alongside the transition) ever changes after insert.
type Payment struct {
	ID        string                              `gorm:"primaryKey;type:text" json:"id"`
	DriverID  string                              `gorm:"type:text;index;not null" json:"driver_id"`
	TenantID  string                              `gorm:"type:text;index;not null" json:"tenant_id"`
	Amount    decimal.Decimal                     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Type      PaymentType                         `gorm:"type:text;not null" json:"type"`
	Status    PaymentStatus                       `gorm:"type:text;not null" json:"status"`
	Data      datatypes.JSONType[PaymentMetadata] `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time                           `json:"created_at"`
	UpdatedAt time.Time                           `json:"updated_at"`
}

func (p Payment) Metadata() PaymentMetadata {
	return p.Data.Data()
}
