package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/invoice"
	"github.com/iamminhquan/jewelry-store/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// Service is the only place an order's status may change. Both the
// storefront and the back office go through these functions, so the legality
// of every transition is decided exactly once.
type Service struct {
	DB       *gorm.DB
	Invoices *invoice.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:       db,
		Invoices: &invoice.Service{DB: db},
	}
}

// Subtotal sums quantity times snapshot price over cart line items.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// CreateOrderFromCart freezes a cart into a PENDING order. The order, its
// line items and the cart closure commit in one transaction: either all rows
// land or none do.
func (s *Service) CreateOrderFromCart(ctx context.Context, accountID uint, cart *models.Cart, items []models.CartItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	order := &models.Order{
		AccountID: accountID,
		Subtotal:  Subtotal(items),
		Status:    models.OrderPending,
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range items {
			qty := decimal.NewFromInt(int64(item.Quantity))
			oi := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: item.UnitPrice.Mul(qty),
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
		}

		cart.Status = models.CartClosed
		return tx.Model(cart).Update("status", models.CartClosed).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// CreateOrderFromProduct is the Buy Now path: one product straight to a
// PENDING order, skipping the cart. The price snapshot is the product's
// current sell price.
func (s *Service) CreateOrderFromProduct(ctx context.Context, accountID uint, product *models.Product, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	qty := decimal.NewFromInt(int64(quantity))
	total := product.SellPrice.Mul(qty)

	order := &models.Order{
		AccountID: accountID,
		Subtotal:  total,
		Status:    models.OrderPending,
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		oi := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.SellPrice,
			LineTotal: total,
		}
		return tx.Create(&oi).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// ConfirmOrder moves PENDING to PROCESSING and stamps the placed timestamp.
// From any other state it silently returns the order unchanged, so a
// duplicated confirmation click is harmless.
func (s *Service) ConfirmOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Status != models.OrderPending {
		return order, nil
	}

	now := time.Now().UTC()
	order.Status = models.OrderProcessing
	order.PlacedAt = &now
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder is the back-office cancellation: allowed while the order is
// pending, processing or shipping. The bool tells the caller whether the
// cancellation took effect.
func (s *Service) CancelOrder(ctx context.Context, order *models.Order) (bool, error) {
	if !order.Status.AdminCancellable() {
		return false, nil
	}
	order.Status = models.OrderCancelled
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return false, err
	}
	return true, nil
}

// CancelUserOrder is the customer-initiated cancellation, stricter than the
// admin one: once the order ships the customer can no longer cancel.
func (s *Service) CancelUserOrder(ctx context.Context, order *models.Order) (bool, error) {
	if !order.Status.UserCancellable() {
		return false, nil
	}
	order.Status = models.OrderCancelled
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return false, err
	}
	return true, nil
}

// UpdateOrderStatus is the admin transition entry point. Moving to
// PROCESSING stamps the placed timestamp if unset. Moving to COMPLETED
// always goes through invoice creation, which is idempotent: a resubmitted
// completion gets the existing invoice back with created=false. The status
// write and the invoice commit in one transaction, so an order can never be
// durably completed without its invoice.
func (s *Service) UpdateOrderStatus(ctx context.Context, order *models.Order, newStatus models.OrderStatus) (*models.Order, *models.Invoice, bool, error) {
	if !newStatus.Valid() {
		return nil, nil, false, fmt.Errorf("%w: invalid order status %d", ErrValidation, newStatus)
	}

	oldStatus := order.Status
	oldPlacedAt := order.PlacedAt
	order.Status = newStatus

	if newStatus == models.OrderProcessing && order.PlacedAt == nil {
		now := time.Now().UTC()
		order.PlacedAt = &now
	}

	var (
		inv     *models.Invoice
		created bool
	)
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		if newStatus != models.OrderCompleted {
			return nil
		}
		var err error
		inv, created, err = (&invoice.Service{DB: tx}).CreateFromOrder(ctx, order)
		return err
	})
	if txErr != nil {
		order.Status = oldStatus
		order.PlacedAt = oldPlacedAt
		return nil, nil, false, txErr
	}
	return order, inv, created, nil
}

// UpdateOrder edits the subtotal and placed date from the back office.
// Financials freeze once the order is completed or cancelled: the call is a
// silent no-op then.
func (s *Service) UpdateOrder(ctx context.Context, order *models.Order, subtotal *decimal.Decimal, placedAt *time.Time) (*models.Order, error) {
	if order.Status.Terminal() {
		return order, nil
	}

	if subtotal != nil {
		order.Subtotal = *subtotal
	}
	if placedAt != nil {
		order.PlacedAt = placedAt
	}
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetForAccount looks up an order only if it belongs to the account, so a
// customer cannot act on somebody else's order.
func (s *Service) GetForAccount(ctx context.Context, id, accountID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) CompletedForAccount(ctx context.Context, accountID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, models.OrderCompleted).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) Items(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

// ItemWithProduct pairs an order line item with its catalog product.
type ItemWithProduct struct {
	Item    models.OrderItem `json:"item"`
	Product *models.Product  `json:"product"`
}

func (s *Service) ItemsWithProducts(ctx context.Context, orderID uint) ([]ItemWithProduct, error) {
	items, err := s.Items(ctx, orderID)
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

// HistoryEntry is one completed order with its invoice and detailed items,
// as shown on the customer's purchase history page.
type HistoryEntry struct {
	Order   models.Order      `json:"order"`
	Invoice *models.Invoice   `json:"invoice"`
	Items   []ItemWithProduct `json:"items"`
}

func (s *Service) PurchaseHistory(ctx context.Context, accountID uint) ([]HistoryEntry, error) {
	orders, err := s.CompletedForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, 0, len(orders))
	for _, o := range orders {
		entry := HistoryEntry{Order: o}
		if inv, err := s.Invoices.ForOrder(ctx, o.ID); err == nil {
			entry.Invoice = inv
		} else if !errors.Is(err, invoice.ErrNotFound) {
			return nil, err
		}
		items, err := s.ItemsWithProducts(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		entry.Items = items
		history = append(history, entry)
	}
	return history, nil
}
