package cart

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

// Actions accepted by UpdateItemQuantity.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// Service owns every cart mutation. Totals are always computed from the line
// items on read, never stored, so they cannot drift.
type Service struct {
	DB *gorm.DB
}

// ActiveCart returns the single open cart for the account, or ErrNotFound.
func (s *Service) ActiveCart(ctx context.Context, accountID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.DB.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, models.CartOpen).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateActiveCart lazily creates the open cart on first use.
func (s *Service) GetOrCreateActiveCart(ctx context.Context, accountID uint) (*models.Cart, error) {
	cart, err := s.ActiveCart(ctx, accountID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{
		AccountID: accountID,
		Status:    models.CartOpen,
	}
	if err := s.DB.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) Items(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Item(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ItemCount reports how many line items sit in the account's open cart.
func (s *Service) ItemCount(ctx context.Context, accountID uint) (int64, error) {
	cart, err := s.ActiveCart(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ?", cart.ID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddProduct puts one unit of the product into the cart. A product already
// present gets its quantity bumped instead of a second row; a new row snapshots
// the product's current sell price.
func (s *Service) AddProduct(ctx context.Context, cart *models.Cart, product *models.Product) (*models.CartItem, error) {
	var result *models.CartItem

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity++
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			result = &item
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  1,
				UnitPrice: product.SellPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			result = &item
		default:
			return err
		}
		return s.touch(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItemQuantity applies an increase or decrease action. Decreasing to
// zero deletes the row; the returned bool reports whether the item survived.
func (s *Service) UpdateItemQuantity(ctx context.Context, cart *models.Cart, item *models.CartItem, action string) (bool, error) {
	switch action {
	case ActionIncrease, ActionDecrease:
	default:
		return false, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	alive := true
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == ActionIncrease {
			item.Quantity++
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		} else {
			item.Quantity--
			if item.Quantity <= 0 {
				if err := tx.Delete(item).Error; err != nil {
					return err
				}
				alive = false
			} else if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		return s.touch(tx, cart)
	})
	if err != nil {
		return alive, err
	}
	return alive, nil
}

func (s *Service) RemoveItem(ctx context.Context, cart *models.Cart, item *models.CartItem) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(item).Error; err != nil {
			return err
		}
		return s.touch(tx, cart)
	})
}

// Clear deletes every line item of the cart and stamps it like every other
// mutation.
func (s *Service) Clear(ctx context.Context, cartID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cartID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

func (s *Service) touch(tx *gorm.DB, cart *models.Cart) error {
	return tx.Model(cart).Update("updated_at", time.Now().UTC()).Error
}

// Totals computes the cart's money total and unit count from its line items.
func Totals(items []models.CartItem) (decimal.Decimal, int) {
	total := decimal.Zero
	quantity := 0
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		quantity += item.Quantity
	}
	return total, quantity
}
