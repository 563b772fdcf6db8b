package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitionsByState(t *testing.T) {
	cases := []struct {
		status           OrderStatus
		terminal         bool
		userCancellable  bool
		adminCancellable bool
	}{
		{OrderPending, false, true, true},
		{OrderProcessing, false, true, true},
		{OrderShipping, false, false, true},
		{OrderCompleted, true, false, false},
		{OrderCancelled, true, false, false},
	}
	for _, tc := range cases {
		require.True(t, tc.status.Valid())
		require.Equal(t, tc.terminal, tc.status.Terminal(), "terminal %d", tc.status)
		require.Equal(t, tc.userCancellable, tc.status.UserCancellable(), "user cancel %d", tc.status)
		require.Equal(t, tc.adminCancellable, tc.status.AdminCancellable(), "admin cancel %d", tc.status)
	}

	require.False(t, OrderStatus(-1).Valid())
	require.False(t, OrderStatus(5).Valid())
}

func TestInvoiceStatusIsNotOrderStatus(t *testing.T) {
	// Same integer, different meaning: 2 is "paid" for invoices and
	// "shipping" for orders, 3 is "deleted" versus "completed".
	require.Equal(t, "Đã thanh toán", InvoicePaid.Label())
	require.Equal(t, "Đang giao hàng", OrderShipping.Label())
	require.Equal(t, "Đã xóa", InvoiceDeleted.Label())
	require.Equal(t, "Hoàn thành", OrderCompleted.Label())

	require.Equal(t, InvoicePaid, InvoiceStatusOnCompletion)
}

func TestCatalogStatusValid(t *testing.T) {
	for _, s := range []CatalogStatus{CatalogHidden, CatalogActive, CatalogOutOfStock, CatalogDeleted} {
		require.True(t, s.Valid())
	}
	require.False(t, CatalogStatus(4).Valid())
}

func TestAccountRole(t *testing.T) {
	require.True(t, RoleAdmin.IsAdmin())
	require.False(t, RoleCustomer.IsAdmin())
}

func TestAccountStatusValid(t *testing.T) {
	require.True(t, AccountActive.Valid())
	require.True(t, AccountLocked.Valid())
	require.False(t, AccountStatus(2).Valid())
	require.False(t, AccountStatus(-1).Valid())
}
