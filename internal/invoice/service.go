package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type Service struct {
	DB *gorm.DB
}

// CreateFromOrder generates the invoice for a completed order, copying owner,
// subtotal, placed date and every line item verbatim. It is idempotent: if an
// invoice already references the order it is returned with created=false.
// The unique index on invoices.order_id backstops the lookup, so two
// concurrent completions cannot both insert.
func (s *Service) CreateFromOrder(ctx context.Context, order *models.Order) (*models.Invoice, bool, error) {
	if existing, err := s.ForOrder(ctx, order.ID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	orderID := order.ID
	inv := &models.Invoice{
		AccountID: order.AccountID,
		OrderID:   &orderID,
		Subtotal:  order.Subtotal,
		Status:    models.InvoiceStatusOnCompletion,
		PlacedAt:  order.PlacedAt,
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}

		var orderItems []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&orderItems).Error; err != nil {
			return err
		}
		for _, oi := range orderItems {
			item := models.InvoiceItem{
				InvoiceID: inv.ID,
				ProductID: oi.ProductID,
				Quantity:  oi.Quantity,
				UnitPrice: oi.UnitPrice,
				LineTotal: oi.LineTotal,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		// A concurrent completion may have won the insert race on order_id.
		if existing, err := s.ForOrder(ctx, order.ID); err == nil {
			return existing, false, nil
		}
		return nil, false, txErr
	}

	return inv, true, nil
}

// ForOrder finds the invoice generated for the given order, if any.
func (s *Service) ForOrder(ctx context.Context, orderID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) GetForAccount(ctx context.Context, id, accountID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.DB.WithContext(ctx).
		Where("account_id = ? AND status <> ?", accountID, models.InvoiceDeleted).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (s *Service) Items(ctx context.Context, invoiceID uint) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	err := s.DB.WithContext(ctx).Where("invoice_id = ?", invoiceID).Find(&items).Error
	return items, err
}

// ItemWithProduct pairs an invoice line item with its catalog product for
// display.
type ItemWithProduct struct {
	Item    models.InvoiceItem `json:"item"`
	Product *models.Product    `json:"product"`
}

func (s *Service) ItemsWithProducts(ctx context.Context, invoiceID uint) ([]ItemWithProduct, error) {
	items, err := s.Items(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	result := make([]ItemWithProduct, 0, len(items))
	for _, item := range items {
		var product models.Product
		entry := ItemWithProduct{Item: item}
		if err := s.DB.WithContext(ctx).First(&product, item.ProductID).Error; err == nil {
			entry.Product = &product
		}
		result = append(result, entry)
	}
	return result, nil
}

// Filter narrows the back-office invoice listing.
type Filter struct {
	Keyword  string
	Status   *models.InvoiceStatus
	DateFrom *time.Time
	DateTo   *time.Time
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

func (s *Service) buildQuery(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Joins("LEFT JOIN accounts ON invoices.account_id = accounts.id")

	if f.Status != nil {
		q = q.Where("invoices.status = ?", *f.Status)
	} else {
		// Soft-deleted invoices stay out of the default listing.
		q = q.Where("invoices.status <> ?", models.InvoiceDeleted)
	}
	if f.DateFrom != nil {
		q = q.Where("invoices.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("invoices.created_at <= ?", *f.DateTo)
	}
	if f.MinValue != nil {
		q = q.Where("invoices.subtotal >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		q = q.Where("invoices.subtotal <= ?", *f.MaxValue)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		q = q.Where(
			"CAST(invoices.id AS TEXT) LIKE ? OR LOWER(accounts.full_name) LIKE LOWER(?) OR LOWER(accounts.username) LIKE LOWER(?)",
			like, like, like,
		)
	}
	return q
}

func (s *Service) List(ctx context.Context, f Filter, offset, limit int) ([]models.Invoice, int64, error) {
	q := s.buildQuery(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.Invoice
	err := q.Order("invoices.id DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// StatusCounts reports per-status totals for the listing header, excluding
// soft-deleted invoices from the overall count.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Paid       int64 `json:"paid"`
	Cancelled  int64 `json:"cancelled"`
}

func (s *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts
	db := s.DB.WithContext(ctx).Model(&models.Invoice{})

	if err := db.Session(&gorm.Session{}).Where("status <> ?", models.InvoiceDeleted).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	for status, dst := range map[models.InvoiceStatus]*int64{
		models.InvoicePending:    &counts.Pending,
		models.InvoiceProcessing: &counts.Processing,
		models.InvoicePaid:       &counts.Paid,
		models.InvoiceCancelled:  &counts.Cancelled,
	} {
		if err := db.Session(&gorm.Session{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// Create makes a standalone invoice from the admin form, unrelated to any
// order.
func (s *Service) Create(ctx context.Context, accountID uint, subtotal decimal.Decimal, placedAt *time.Time, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid invoice status %d", ErrValidation, status)
	}

	inv := &models.Invoice{
		AccountID: accountID,
		Subtotal:  subtotal,
		Status:    status,
		PlacedAt:  placedAt,
	}
	if inv.PlacedAt == nil {
		now := time.Now().UTC()
		inv.PlacedAt = &now
	}
	if err := s.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// Update edits invoice fields from the admin form. Nil arguments leave the
// corresponding field untouched.
func (s *Service) Update(ctx context.Context, inv *models.Invoice, subtotal *decimal.Decimal, placedAt *time.Time, status *models.InvoiceStatus) (*models.Invoice, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: invalid invoice status %d", ErrValidation, *status)
	}

	if subtotal != nil {
		inv.Subtotal = *subtotal
	}
	if placedAt != nil {
		inv.PlacedAt = placedAt
	}
	if status != nil {
		inv.Status = *status
	}
	if err := s.DB.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// SoftDelete flags the invoice deleted; the row is never removed.
func (s *Service) SoftDelete(ctx context.Context, inv *models.Invoice) error {
	inv.Status = models.InvoiceDeleted
	return s.DB.WithContext(ctx).Save(inv).Error
}
