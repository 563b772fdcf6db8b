package cart

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func newTestProduct(t *testing.T, db *gorm.DB, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      "test ring",
		SellPrice: decimal.RequireFromString(price),
		Stock:     100,
		Status:    models.CatalogActive,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGetOrCreateActiveCart(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	first, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, models.CartOpen, first.Status)

	second, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	// A closed cart is never reused.
	require.NoError(t, db.Model(first).Update("status", models.CartClosed).Error)
	third, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, third.ID)
}

func TestAddProductIncrementsExistingLine(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	product := newTestProduct(t, db, "100.00")

	c, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)

	item, err := svc.AddProduct(ctx, c, product)
	require.NoError(t, err)
	require.Equal(t, 1, item.Quantity)

	item, err = svc.AddProduct(ctx, c, product)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	items, err := svc.Items(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddProductSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	product := newTestProduct(t, db, "100.00")

	c, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	item, err := svc.AddProduct(ctx, c, product)
	require.NoError(t, err)

	// A later catalog price change must not move the cart line.
	require.NoError(t, db.Model(product).Update("sell_price", decimal.RequireFromString("250.00")).Error)

	got, err := svc.Item(ctx, c.ID, product.ID)
	require.NoError(t, err)
	require.True(t, got.UnitPrice.Equal(item.UnitPrice))
	require.True(t, got.UnitPrice.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateItemQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	product := newTestProduct(t, db, "50.00")

	c, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	item, err := svc.AddProduct(ctx, c, product)
	require.NoError(t, err)

	alive, err := svc.UpdateItemQuantity(ctx, c, item, ActionIncrease)
	require.NoError(t, err)
	require.True(t, alive)
	require.Equal(t, 2, item.Quantity)

	alive, err = svc.UpdateItemQuantity(ctx, c, item, ActionDecrease)
	require.NoError(t, err)
	require.True(t, alive)

	// Decreasing the last unit removes the line entirely.
	alive, err = svc.UpdateItemQuantity(ctx, c, item, ActionDecrease)
	require.NoError(t, err)
	require.False(t, alive)

	items, err := svc.Items(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.UpdateItemQuantity(ctx, c, item, "explode")
	require.ErrorIs(t, err, ErrValidation)
}

func TestClear(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	c, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, c, newTestProduct(t, db, "10.00"))
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, c, newTestProduct(t, db, "20.00"))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, c.ID))

	items, err := svc.Items(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestMutationsStampCart(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	product := newTestProduct(t, db, "10.00")

	c, err := svc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)

	stale := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	backdate := func() {
		require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", c.ID).
			Update("updated_at", stale).Error)
	}
	stamped := func() time.Time {
		var got models.Cart
		require.NoError(t, db.First(&got, c.ID).Error)
		return got.UpdatedAt
	}

	backdate()
	item, err := svc.AddProduct(ctx, c, product)
	require.NoError(t, err)
	require.True(t, stamped().After(stale), "AddProduct must stamp the cart")

	backdate()
	_, err = svc.UpdateItemQuantity(ctx, c, item, ActionIncrease)
	require.NoError(t, err)
	require.True(t, stamped().After(stale), "UpdateItemQuantity must stamp the cart")

	backdate()
	require.NoError(t, svc.Clear(ctx, c.ID))
	require.True(t, stamped().After(stale), "Clear must stamp the cart")
}

func TestTotals(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("100.00")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("50.00")},
	}

	total, quantity := Totals(items)
	require.True(t, total.Equal(decimal.RequireFromString("250.00")))
	require.Equal(t, 3, quantity)
}
