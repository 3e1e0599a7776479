// internal/models/tenant.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// IntegrationSettings configures the tenant's WhatsApp (WAHA) proxy and n8n webhook.
type IntegrationSettings struct {
	WahaURL    string `json:"waha_url,omitempty" binding:"omitempty,url"`
	WahaToken  string `json:"waha_token,omitempty"`
	N8nWebhook string `json:"n8n_webhook,omitempty" binding:"omitempty,url"`
}

// Merge fills blank fields from fallback.
func (s IntegrationSettings) Merge(fallback IntegrationSettings) IntegrationSettings {
	if s.WahaURL == "" {
		s.WahaURL = fallback.WahaURL
		if s.WahaToken == "" {
			s.WahaToken = fallback.WahaToken
		}
	}
	if s.N8nWebhook == "" {
		s.N8nWebhook = fallback.N8nWebhook
	}
	return s
}

// Tenant is a leasing company (Arrendadora) subscribed to the platform.
type Tenant struct {
	ID                  string                                  `gorm:"primaryKey;type:text" json:"id"`
	CompanyName         string                                  `gorm:"not null" json:"company_name"`
	PlanID              *string                                 `gorm:"type:text" json:"plan_id,omitempty"`
	Status              TenantStatus                            `gorm:"type:text" json:"status"`
	IntegrationSettings datatypes.JSONType[IntegrationSettings] `gorm:"type:jsonb" json:"integration_settings"`
	CreatedAt           time.Time                               `json:"created_at"`
}

func (t Tenant) Integrations() IntegrationSettings {
	return t.IntegrationSettings.Data()
}
