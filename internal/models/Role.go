package models

import (
	"fmt"
	"strconv"
	"strings"
)

type Role string

const (
	RoleSuperAdmin   Role = "Super Admin"
	RoleArrendador   Role = "Arrendador"
	RoleArrendatario Role = "Arrendatario"
)

type Capability string

const (
	CapReportPayment     Capability = "payments:report"
	CapReviewPayments    Capability = "payments:review"
	CapReadLedger        Capability = "ledger:read"
	CapReconcile         Capability = "ledger:reconcile"
	CapReadNotifications Capability = "notifications:read"
	CapEditProfile       Capability = "drivers:profile"
	CapManageDrivers     Capability = "drivers:manage"
	CapManageFleet       Capability = "fleet:manage"
	CapManageIntegration Capability = "tenants:integrations"
	CapManageTenants     Capability = "tenants:manage"
	CapReadPlans         Capability = "plans:read"
	CapManagePlans       Capability = "plans:manage"
)

type CapabilitySet map[Capability]struct{}

func newCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var roleCapabilities = map[Role]CapabilitySet{
	RoleSuperAdmin: newCapabilitySet(
		CapReportPayment, CapReviewPayments, CapReadLedger, CapReconcile, CapReadNotifications,
		CapManageDrivers, CapManageFleet, CapManageIntegration, CapManageTenants, CapReadPlans, CapManagePlans,
	),
	RoleArrendador: newCapabilitySet(
		CapReportPayment, CapReviewPayments, CapReadLedger, CapReconcile, CapReadNotifications,
		CapEditProfile, CapManageDrivers, CapManageFleet, CapManageIntegration, CapReadPlans,
	),
	RoleArrendatario: newCapabilitySet(
		CapReportPayment, CapReadLedger, CapReadNotifications, CapEditProfile, CapReadPlans,
	),
}

var roleAliases = map[string]Role{
	"super admin":  RoleSuperAdmin,
	"superadmin":   RoleSuperAdmin,
	"admin":        RoleSuperAdmin,
	"arrendador":   RoleArrendador,
	"lessor":       RoleArrendador,
	"arrendatario": RoleArrendatario,
	"driver":       RoleArrendatario,
}

func ParseRole(raw string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", raw)
}

// Capabilities returns the fixed capability set of r; unknown roles get none.
func (r Role) Capabilities() CapabilitySet {
	if set, ok := roleCapabilities[r]; ok {
		return set
	}
	return CapabilitySet{}
}

// Scope restricts an operation to a tenant and, for drivers, to their own record.
// The zero Scope is unrestricted.
type Scope struct {
	TenantID string
	DriverID string
}

func (s Scope) AllowsTenant(tenantID string) bool {
	return s.TenantID == "" || s.TenantID == tenantID
}

func (s Scope) AllowsDriver(tenantID, driverID string) bool {
	return s.AllowsTenant(tenantID) && (s.DriverID == "" || s.DriverID == driverID)
}

// Session is the authenticated caller, resolved once per request from the token.
type Session struct {
	UserID       uint
	Role         Role
	TenantID     string
	DriverID     string
	Capabilities CapabilitySet
}

func NewSession(userID uint, role Role, tenantID, driverID string) Session {
	return Session{
		UserID:       userID,
		Role:         role,
		TenantID:     tenantID,
		DriverID:     driverID,
		Capabilities: role.Capabilities(),
	}
}

func (s Session) Can(c Capability) bool {
	return s.Capabilities.Has(c)
}

func (s Session) Scope() Scope {
	switch s.Role {
	case RoleSuperAdmin:
		return Scope{}
	case RoleArrendatario:
		return Scope{TenantID: s.TenantID, DriverID: s.DriverID}
	default:
		return Scope{TenantID: s.TenantID}
	}
}

// RecipientID is the user_id notifications addressed to this caller carry.
// Drivers are addressed by driver id.
func (s Session) RecipientID() string {
	if s.Role == RoleArrendatario && s.DriverID != "" {
		return s.DriverID
	}
	return strconv.FormatUint(uint64(s.UserID), 10)
}
