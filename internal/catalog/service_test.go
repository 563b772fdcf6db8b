package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/config"
	"github.com/iamminhquan/jewelry-store/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return &Service{DB: db}
}

func TestListProductsExcludesDeleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	alive := &models.Product{Name: "Nhẫn kim cương", SellPrice: decimal.RequireFromString("1000.00"), Status: models.CatalogActive}
	gone := &models.Product{Name: "Nhẫn cũ", Status: models.CatalogDeleted}
	require.NoError(t, svc.CreateProduct(ctx, alive))
	require.NoError(t, svc.CreateProduct(ctx, gone))

	products, total, err := svc.ListProducts(ctx, ProductFilter{}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, alive.ID, products[0].ID)

	// Explicit status filter can still reach the deleted row.
	del := models.CatalogDeleted
	products, total, err = svc.ListProducts(ctx, ProductFilter{Status: &del}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, gone.ID, products[0].ID)
}

func TestListProductsFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cat := &models.Category{Name: "Nhẫn", Status: models.CatalogActive}
	require.NoError(t, svc.SaveCategory(ctx, cat))

	p1 := &models.Product{Name: "Nhẫn vàng 18K", CategoryID: &cat.ID, Status: models.CatalogActive}
	p2 := &models.Product{Name: "Dây chuyền bạc", Status: models.CatalogActive}
	require.NoError(t, svc.CreateProduct(ctx, p1))
	require.NoError(t, svc.CreateProduct(ctx, p2))

	_, total, err := svc.ListProducts(ctx, ProductFilter{CategoryID: &cat.ID}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	_, total, err = svc.ListProducts(ctx, ProductFilter{Keyword: "vàng"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestSoftDeleteProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := &models.Product{Name: "Lắc tay", Status: models.CatalogActive}
	require.NoError(t, svc.CreateProduct(ctx, p))
	require.NoError(t, svc.SoftDeleteProduct(ctx, p))

	// Row stays readable by id.
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, models.CatalogDeleted, got.Status)

	_, err = svc.GetProduct(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMaterialsJoin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := &models.Product{Name: "Nhẫn", Status: models.CatalogActive}
	require.NoError(t, svc.CreateProduct(ctx, p))

	gold := &models.Material{Name: "Vàng 24K", Status: models.CatalogActive}
	silver := &models.Material{Name: "Bạc", Status: models.CatalogActive}
	require.NoError(t, svc.SaveMaterial(ctx, gold))
	require.NoError(t, svc.SaveMaterial(ctx, silver))
	require.NoError(t, svc.DB.Create(&models.ProductMaterial{ProductID: p.ID, MaterialID: gold.ID}).Error)

	materials, err := svc.Materials(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	require.Equal(t, "Vàng 24K", materials[0].Name)
}

func TestLookupLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b := &models.Brand{Name: "PNJ", Status: models.CatalogActive}
	require.NoError(t, svc.SaveBrand(ctx, b))

	brands, err := svc.ListBrands(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, brands, 1)

	require.NoError(t, svc.SoftDeleteBrand(ctx, b))
	brands, err = svc.ListBrands(ctx, "", nil)
	require.NoError(t, err)
	require.Empty(t, brands)

	// Still reachable by id after soft delete.
	got, err := svc.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.CatalogDeleted, got.Status)
}
