package report

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/config"
	"github.com/iamminhquan/jewelry-store/internal/models"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	svc := NewService(db)
	svc.Now = func() time.Time { return now }
	return svc
}

func createInvoiceAt(t *testing.T, db *gorm.DB, subtotal string, status models.InvoiceStatus, at time.Time) {
	t.Helper()
	inv := models.Invoice{
		AccountID: 1,
		Subtotal:  decimal.RequireFromString(subtotal),
		Status:    status,
	}
	require.NoError(t, db.Create(&inv).Error)
	require.NoError(t, db.Model(&inv).Update("created_at", at).Error)
}

func createOrderAt(t *testing.T, db *gorm.DB, status models.OrderStatus, at time.Time) {
	t.Helper()
	ord := models.Order{AccountID: 1, Status: status, Subtotal: decimal.RequireFromString("10.00")}
	require.NoError(t, db.Create(&ord).Error)
	require.NoError(t, db.Model(&ord).Update("created_at", at).Error)
}

func TestSafePercentChange(t *testing.T) {
	require.Zero(t, safePercentChange(decimal.RequireFromString("100"), decimal.Zero))
	require.Equal(t, 50.0, safePercentChange(decimal.RequireFromString("150"), decimal.RequireFromString("100")))
	require.Equal(t, -25.0, safePercentChange(decimal.RequireFromString("75"), decimal.RequireFromString("100")))
}

func TestRevenueStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	createInvoiceAt(t, svc.DB, "100.00", models.InvoicePaid, now.AddDate(0, 0, -1))
	createInvoiceAt(t, svc.DB, "200.00", models.InvoicePaid, now.AddDate(0, 0, -2))
	// Last month but outside the 30-day daily window.
	createInvoiceAt(t, svc.DB, "50.00", models.InvoicePaid, now.AddDate(0, -1, -10))
	// Deleted invoices never count toward revenue.
	createInvoiceAt(t, svc.DB, "999.00", models.InvoiceDeleted, now.AddDate(0, 0, -1))

	stats, err := svc.RevenueStats(context.Background(), 30)
	require.NoError(t, err)
	require.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("350.00")))
	require.True(t, stats.RevenueThisMonth.Equal(decimal.RequireFromString("300.00")))
	require.True(t, stats.RevenueLastMonth.Equal(decimal.RequireFromString("50.00")))
	require.Equal(t, 500.0, stats.GrowthPercent)
	require.Len(t, stats.DailyRevenue, 2)
}

func TestRevenueStatsEmptyDB(t *testing.T) {
	svc := newTestService(t, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	stats, err := svc.RevenueStats(context.Background(), 30)
	require.NoError(t, err)
	require.True(t, stats.TotalRevenue.IsZero())
	require.Zero(t, stats.GrowthPercent)
	require.Empty(t, stats.DailyRevenue)
}

func TestPurchaseStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	createOrderAt(t, svc.DB, models.OrderCompleted, now.AddDate(0, 0, -1))
	createOrderAt(t, svc.DB, models.OrderCompleted, now.AddDate(0, 0, -2))
	createOrderAt(t, svc.DB, models.OrderCancelled, now.AddDate(0, 0, -3))
	createOrderAt(t, svc.DB, models.OrderPending, now.AddDate(0, -1, 0))

	stats, err := svc.PurchaseStats(context.Background(), 30)
	require.NoError(t, err)
	require.EqualValues(t, 4, stats.TotalOrders)
	require.EqualValues(t, 2, stats.Delivered)
	require.EqualValues(t, 1, stats.Cancelled)
	require.EqualValues(t, 1, stats.Pending)
	require.EqualValues(t, 3, stats.OrdersThisMonth)
	require.EqualValues(t, 1, stats.OrdersLastMonth)
	require.Equal(t, 200.0, stats.GrowthPercent)
	require.Equal(t, 25.0, stats.CancelRate)
}

func TestBuildReportAvgOrderValue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	createInvoiceAt(t, svc.DB, "300.00", models.InvoicePaid, now.AddDate(0, 0, -1))
	createOrderAt(t, svc.DB, models.OrderCompleted, now.AddDate(0, 0, -1))
	createOrderAt(t, svc.DB, models.OrderPending, now.AddDate(0, 0, -1))

	data, err := svc.BuildReport(context.Background(), 30)
	require.NoError(t, err)
	require.True(t, data.AvgOrderValue.Equal(decimal.RequireFromString("150.00")))
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	db := svc.DB

	createInvoiceAt(t, db, "120.00", models.InvoicePaid, now.Add(-time.Hour))
	createInvoiceAt(t, db, "80.00", models.InvoicePaid, now.AddDate(0, 0, -1))

	createOrderAt(t, db, models.OrderPending, now.Add(-time.Hour))
	createOrderAt(t, db, models.OrderCompleted, now.AddDate(0, 0, -5))

	require.NoError(t, db.Create(&models.Account{Username: "kh", Role: models.RoleCustomer}).Error)
	require.NoError(t, db.Create(&models.Account{Username: "qt", Role: models.RoleAdmin}).Error)

	require.NoError(t, db.Create(&models.Product{Name: "in stock", Stock: 50, Status: models.CatalogActive}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "low", Stock: 3, Status: models.CatalogActive}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "gone", Stock: 0, Status: models.CatalogActive}).Error)

	dash, err := svc.BuildDashboard(context.Background())
	require.NoError(t, err)
	require.True(t, dash.TodayRevenue.Equal(decimal.RequireFromString("120.00")))
	require.True(t, dash.YesterdayRevenue.Equal(decimal.RequireFromString("80.00")))
	require.EqualValues(t, 2, dash.Orders.Total)
	require.EqualValues(t, 1, dash.Orders.NewToday)
	require.EqualValues(t, 1, dash.Orders.Pending)
	require.EqualValues(t, 1, dash.Orders.Completed)
	require.EqualValues(t, 3, dash.Products.Total)
	require.EqualValues(t, 1, dash.Products.OutOfStock)
	require.EqualValues(t, 1, dash.Products.LowStock)
	require.EqualValues(t, 1, dash.Customers)
	require.Len(t, dash.RecentOrders, 2)
	require.Len(t, dash.LowStock, 1)
	require.Len(t, dash.OutOfStock, 1)
}

func TestBuildWorkbook(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	createInvoiceAt(t, svc.DB, "300.00", models.InvoicePaid, now.AddDate(0, 0, -1))
	createOrderAt(t, svc.DB, models.OrderCompleted, now.AddDate(0, 0, -1))

	data, err := svc.BuildReport(context.Background(), 30)
	require.NoError(t, err)

	f, err := BuildWorkbook(data)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Doanh thu")
	require.Contains(t, f.GetSheetList(), "Đơn hàng")

	got, err := f.GetCellValue("Doanh thu", "B2")
	require.NoError(t, err)
	require.Equal(t, "300.00", got)
}
