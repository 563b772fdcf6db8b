package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

const lowStockThreshold = 10

type OrderCounters struct {
	Total     int64 `json:"total"`
	NewToday  int64 `json:"new_today"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type ProductCounters struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	OutOfStock int64 `json:"out_of_stock"`
	LowStock   int64 `json:"low_stock"`
}

type Dashboard struct {
	TodayRevenue     decimal.Decimal  `json:"today_revenue"`
	YesterdayRevenue decimal.Decimal  `json:"yesterday_revenue"`
	Orders           OrderCounters    `json:"orders"`
	Products         ProductCounters  `json:"products"`
	Customers        int64            `json:"customers"`
	Categories       int64            `json:"categories"`
	Brands           int64            `json:"brands"`
	RecentOrders     []models.Order   `json:"recent_orders"`
	LowStock         []models.Product `json:"low_stock_products"`
	OutOfStock       []models.Product `json:"out_of_stock_products"`
}

func dayBounds(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// BuildDashboard assembles the admin landing page counters in one call.
func (s *Service) BuildDashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	now := s.Now().UTC()
	todayStart, todayEnd := dayBounds(now)
	yesterdayStart, yesterdayEnd := dayBounds(now.AddDate(0, 0, -1))

	var err error
	if dash.TodayRevenue, err = s.sumInvoices(ctx, between(todayStart, todayEnd)); err != nil {
		return dash, err
	}
	if dash.YesterdayRevenue, err = s.sumInvoices(ctx, between(yesterdayStart, yesterdayEnd)); err != nil {
		return dash, err
	}

	if dash.Orders.Total, err = s.countOrders(ctx); err != nil {
		return dash, err
	}
	if dash.Orders.NewToday, err = s.countOrders(ctx, between(todayStart, todayEnd)); err != nil {
		return dash, err
	}
	if dash.Orders.Pending, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderProcessing, models.OrderShipping})
	}); err != nil {
		return dash, err
	}
	if dash.Orders.Completed, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.OrderCompleted)
	}); err != nil {
		return dash, err
	}
	if dash.Orders.Cancelled, err = s.countOrders(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.OrderCancelled)
	}); err != nil {
		return dash, err
	}

	db := s.DB.WithContext(ctx)
	if err = db.Model(&models.Product{}).Count(&dash.Products.Total).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Product{}).
		Where("status = ?", models.CatalogActive).
		Count(&dash.Products.Active).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Product{}).
		Where("stock = 0").
		Count(&dash.Products.OutOfStock).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Product{}).
		Where("status = ? AND stock > 0 AND stock <= ?", models.CatalogActive, lowStockThreshold).
		Count(&dash.Products.LowStock).Error; err != nil {
		return dash, err
	}

	if err = db.Model(&models.Account{}).
		Where("role = ?", models.RoleCustomer).
		Count(&dash.Customers).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Category{}).Count(&dash.Categories).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Brand{}).Count(&dash.Brands).Error; err != nil {
		return dash, err
	}

	if err = db.Model(&models.Order{}).
		Order("created_at DESC").Limit(5).
		Find(&dash.RecentOrders).Error; err != nil {
		return dash, err
	}
	if err = db.Model(&models.Product{}).
		Where("status = ? AND stock > 0 AND stock <= ?", models.CatalogActive, lowStockThreshold).
		Order("stock ASC").Limit(5).
		Find(&dash.LowStock).Error; err != nil {
		return dash, err
	}
	err = db.Model(&models.Product{}).
		Where("status = ? AND stock = 0", models.CatalogActive).
		Order("name ASC").Limit(5).
		Find(&dash.OutOfStock).Error
	return dash, err
}
