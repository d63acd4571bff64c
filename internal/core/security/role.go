// Package security provides actor identity, roles and the capability table.
package security

// Role is the closed set of actor roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleCashier Role = "cashier"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCashier:
		return true
	}
	return false
}

// Capability names operations gated at the routing boundary.
// Access rules live in one table here instead of being re-implemented
// per handler.
type Capability string

const (
	CapEntryWrite    Capability = "entry:write"
	CapEntryRead     Capability = "entry:read"
	CapProductWrite  Capability = "product:write"
	CapProductRead   Capability = "product:read"
	CapStockAdjust   Capability = "stock:adjust"
	CapSupplierWrite Capability = "supplier:write"
	CapSupplierRead  Capability = "supplier:read"
	CapSaleWrite     Capability = "sale:write"
	CapSaleRead      Capability = "sale:read"
	CapReportRead    Capability = "report:read"
	CapUserManage    Capability = "user:manage"
	CapLogRead       Capability = "log:read"
)

// capabilities is the role capability table. Admin is handled separately
// (all capabilities) so the table only lists the restricted roles.
var capabilities = map[Role]map[Capability]bool{
	RoleStaff: {
		CapEntryWrite:    true,
		CapEntryRead:     true,
		CapProductWrite:  true,
		CapProductRead:   true,
		CapStockAdjust:   true,
		CapSupplierWrite: true,
		CapSupplierRead:  true,
		CapSaleRead:      true,
		CapReportRead:    true,
	},
	RoleCashier: {
		CapSaleWrite:   true,
		CapSaleRead:    true,
		CapProductRead: true,
		CapReportRead:  true,
	},
}

// Can reports whether the role is allowed to exercise the capability.
func Can(r Role, c Capability) bool {
	if r == RoleAdmin {
		return true
	}
	return capabilities[r][c]
}
