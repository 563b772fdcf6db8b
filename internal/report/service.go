package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

// Service is the pure read side: it derives revenue and order statistics
// from invoices and orders and never mutates anything.
type Service struct {
	DB *gorm.DB

	// Now is swappable so statistics over "this month" are testable.
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

type DailyRevenue struct {
	Day    string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type DailyOrders struct {
	Day   string `json:"date"`
	Total int64  `json:"total"`
}

type RevenueStats struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	RevenueLastMonth decimal.Decimal `json:"revenue_last_month"`
	GrowthPercent    float64         `json:"growth_percent"`
	DailyRevenue     []DailyRevenue  `json:"daily_revenue"`
}

type PurchaseStats struct {
	TotalOrders     int64         `json:"total_orders"`
	Delivered       int64         `json:"delivered"`
	Cancelled       int64         `json:"cancelled"`
	Pending         int64         `json:"pending"`
	OrdersThisMonth int64         `json:"orders_this_month"`
	OrdersLastMonth int64         `json:"orders_last_month"`
	GrowthPercent   float64       `json:"growth_percent"`
	CancelRate      float64       `json:"cancel_rate"`
	DailyOrders     []DailyOrders `json:"daily_orders"`
}

type ReportData struct {
	Revenue       RevenueStats    `json:"revenue_stats"`
	Purchases     PurchaseStats   `json:"purchase_stats"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// monthBoundaries returns the start/end instants of the current month up to
// today and of the whole previous month.
func monthBoundaries(today time.Time) (startCurrent, endCurrent, startLast, endLast time.Time) {
	y, m, _ := today.Date()
	startCurrent = time.Date(y, m, 1, 0, 0, 0, 0, today.Location())
	endCurrent = today
	startLast = startCurrent.AddDate(0, -1, 0)
	endLast = startCurrent.Add(-time.Second)
	return
}

// safePercentChange returns the month-over-month delta in percent, or 0 when
// there is nothing to compare against.
func safePercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// dateExpr yields a YYYY-MM-DD string for grouping by day. Postgres needs
// to_char; the sqlite used in tests returns DATE() as text already.
func (s *Service) dateExpr() string {
	if s.DB.Dialector.Name() == "postgres" {
		return "to_char(created_at, 'YYYY-MM-DD')"
	}
	return "DATE(created_at)"
}

func (s *Service) sumInvoices(ctx context.Context, conds ...func(*gorm.DB) *gorm.DB) (decimal.Decimal, error) {
	q := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Where("status <> ?", models.InvoiceDeleted)
	for _, c := range conds {
		q = c(q)
	}

	var total decimal.Decimal
	row := q.Select("COALESCE(SUM(subtotal), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func between(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at >= ? AND created_at <= ?", from, to)
	}
}

// RevenueStats aggregates invoice subtotals: lifetime, this month versus
// last month, and a daily series over the trailing window.
func (s *Service) RevenueStats(ctx context.Context, days int) (RevenueStats, error) {
	var stats RevenueStats
	today := s.Now().UTC()
	startCurrent, endCurrent, startLast, endLast := monthBoundaries(today)
	windowStart := today.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var err error
	if stats.TotalRevenue, err = s.sumInvoices(ctx); err != nil {
		return stats, err
	}
	if stats.RevenueThisMonth, err = s.sumInvoices(ctx, between(startCurrent, endCurrent)); err != nil {
		return stats, err
	}
	if stats.RevenueLastMonth, err = s.sumInvoices(ctx, between(startLast, endLast)); err != nil {
		return stats, err
	}
	stats.GrowthPercent = safePercentChange(stats.RevenueThisMonth, stats.RevenueLastMonth)

	err = s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Select(s.dateExpr()+" AS day, COALESCE(SUM(subtotal), 0) AS amount").
		Where("status <> ? AND created_at >= ?", models.InvoiceDeleted, windowStart).
		Group(s.dateExpr()).
		Order(s.dateExpr()).
		Scan(&stats.DailyRevenue).Error
	return stats, err
}

func (s *Service) countOrders(ctx context.Context, conds ...func(*gorm.DB) *gorm.DB) (int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{})
	for _, c := range conds {
		q = c(q)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// PurchaseStats aggregates order counts per status, month-over-month growth,
// the cancellation rate and a daily series over the trailing window.
func (s *Service) PurchaseStats(ctx context.Context, days int) (PurchaseStats, error) {
	var stats PurchaseStats
	today := s.Now().UTC()
	startCurrent, endCurrent, startLast, endLast := monthBoundaries(today)
	windowStart := today.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var err error
	if stats.TotalOrders, err = s.countOrders(ctx); err != nil {
		return stats, err
	}
	if stats.Delivered, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.OrderCompleted)
	}); err != nil {
		return stats, err
	}
	if stats.Cancelled, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.OrderCancelled)
	}); err != nil {
		return stats, err
	}
	if stats.Pending, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderProcessing, models.OrderShipping})
	}); err != nil {
		return stats, err
	}
	if stats.OrdersThisMonth, err = s.countOrders(ctx, between(startCurrent, endCurrent)); err != nil {
		return stats, err
	}
	if stats.OrdersLastMonth, err = s.countOrders(ctx, between(startLast, endLast)); err != nil {
		return stats, err
	}

	stats.GrowthPercent = safePercentChange(
		decimal.NewFromInt(stats.OrdersThisMonth),
		decimal.NewFromInt(stats.OrdersLastMonth),
	)
	if stats.TotalOrders > 0 {
		stats.CancelRate = decimal.NewFromInt(stats.Cancelled).
			Div(decimal.NewFromInt(stats.TotalOrders)).
			Mul(decimal.NewFromInt(100)).
			Round(2).InexactFloat64()
	}

	err = s.DB.WithContext(ctx).Model(&models.Order{}).
		Select(s.dateExpr()+" AS day, COUNT(id) AS total").
		Where("created_at >= ?", windowStart).
		Group(s.dateExpr()).
		Order(s.dateExpr()).
		Scan(&stats.DailyOrders).Error
	return stats, err
}

// BuildReport assembles the full report page payload.
func (s *Service) BuildReport(ctx context.Context, days int) (ReportData, error) {
	var data ReportData

	revenue, err := s.RevenueStats(ctx, days)
	if err != nil {
		return data, err
	}
	purchases, err := s.PurchaseStats(ctx, days)
	if err != nil {
		return data, err
	}

	data.Revenue = revenue
	data.Purchases = purchases
	if purchases.TotalOrders > 0 {
		data.AvgOrderValue = revenue.TotalRevenue.
			Div(decimal.NewFromInt(purchases.TotalOrders)).
			Round(2)
	}
	return data, nil
}
