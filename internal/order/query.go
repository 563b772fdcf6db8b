package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

// Filter narrows the back-office order listing. Nil fields apply no
// condition; the keyword matches the order id or the customer's name.
type Filter struct {
	Keyword  string
	Status   *models.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

func (s *Service) buildQuery(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Order{}).
		Joins("LEFT JOIN accounts ON orders.account_id = accounts.id")

	if f.Status != nil {
		q = q.Where("orders.status = ?", *f.Status)
	}
	if f.DateFrom != nil {
		q = q.Where("orders.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("orders.created_at <= ?", *f.DateTo)
	}
	if f.MinValue != nil {
		q = q.Where("orders.subtotal >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		q = q.Where("orders.subtotal <= ?", *f.MaxValue)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		q = q.Where(
			"CAST(orders.id AS TEXT) LIKE ? OR LOWER(accounts.full_name) LIKE LOWER(?) OR LOWER(accounts.username) LIKE LOWER(?)",
			like, like, like,
		)
	}
	return q
}

func (s *Service) List(ctx context.Context, f Filter, offset, limit int) ([]models.Order, int64, error) {
	q := s.buildQuery(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Order("orders.id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// StatusCounts feeds the listing header tiles in the back office.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Shipping   int64 `json:"shipping"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

func (s *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts
	db := s.DB.WithContext(ctx).Model(&models.Order{})

	if err := db.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	for status, dst := range map[models.OrderStatus]*int64{
		models.OrderPending:    &counts.Pending,
		models.OrderProcessing: &counts.Processing,
		models.OrderShipping:   &counts.Shipping,
		models.OrderCompleted:  &counts.Completed,
		models.OrderCancelled:  &counts.Cancelled,
	} {
		if err := db.Session(&gorm.Session{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return counts, err
		}
	}
	return counts, nil
}
