package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan_AdminHasEverything(t *testing.T) {
	all := []Capability{
		CapEntryWrite, CapEntryRead,
		CapProductWrite, CapProductRead,
		CapStockAdjust,
		CapSupplierWrite, CapSupplierRead,
		CapSaleWrite, CapSaleRead,
		CapReportRead, CapUserManage, CapLogRead,
	}
	for _, c := range all {
		assert.True(t, Can(RoleAdmin, c), "admin should have %s", c)
	}
}

func TestCan_StaffBoundaries(t *testing.T) {
	assert.True(t, Can(RoleStaff, CapEntryWrite))
	assert.True(t, Can(RoleStaff, CapStockAdjust))
	assert.True(t, Can(RoleStaff, CapSupplierWrite))
	assert.True(t, Can(RoleStaff, CapSaleRead))
	assert.True(t, Can(RoleStaff, CapReportRead))

	assert.False(t, Can(RoleStaff, CapSaleWrite))
	assert.False(t, Can(RoleStaff, CapUserManage))
	assert.False(t, Can(RoleStaff, CapLogRead))
}

func TestCan_CashierBoundaries(t *testing.T) {
	assert.True(t, Can(RoleCashier, CapSaleWrite))
	assert.True(t, Can(RoleCashier, CapSaleRead))
	assert.True(t, Can(RoleCashier, CapProductRead))
	assert.True(t, Can(RoleCashier, CapReportRead))

	assert.False(t, Can(RoleCashier, CapEntryRead))
	assert.False(t, Can(RoleCashier, CapEntryWrite))
	assert.False(t, Can(RoleCashier, CapProductWrite))
	assert.False(t, Can(RoleCashier, CapStockAdjust))
	assert.False(t, Can(RoleCashier, CapSupplierRead))
	assert.False(t, Can(RoleCashier, CapUserManage))
	assert.False(t, Can(RoleCashier, CapLogRead))
}

func TestCan_UnknownRole(t *testing.T) {
	assert.False(t, Can(Role("guest"), CapSaleRead))
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleStaff.IsValid())
	assert.True(t, RoleCashier.IsValid())
	assert.False(t, Role("root").IsValid())
	assert.False(t, Role("").IsValid())
}
