package catalog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

var ErrNotFound = errors.New("not found")

// Service covers the read-mostly catalog: products and the lookup entities
// around them. Deletion is always the soft CatalogDeleted flag.
type Service struct {
	DB *gorm.DB
}

// ProductFilter narrows the product listing.
type ProductFilter struct {
	Keyword      string
	Status       *models.CatalogStatus
	CategoryID   *uint
	BrandID      *uint
	CollectionID *uint
	TypeID       *uint
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) ([]models.Product, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{})

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	} else {
		q = q.Where("status <> ?", models.CatalogDeleted)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.BrandID != nil {
		q = q.Where("brand_id = ?", *f.BrandID)
	}
	if f.CollectionID != nil {
		q = q.Where("collection_id = ?", *f.CollectionID)
	}
	if f.TypeID != nil {
		q = q.Where("type_id = ?", *f.TypeID)
	}
	if f.Keyword != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Keyword+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Service) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.DB.WithContext(ctx).Create(product).Error
}

func (s *Service) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	return s.DB.WithContext(ctx).Save(product).Error
}

func (s *Service) SoftDeleteProduct(ctx context.Context, product *models.Product) error {
	product.Status = models.CatalogDeleted
	return s.UpdateProduct(ctx, product)
}

func (s *Service) Images(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := s.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&images).Error
	return images, err
}

func (s *Service) Materials(ctx context.Context, productID uint) ([]models.Material, error) {
	var materials []models.Material
	err := s.DB.WithContext(ctx).Model(&models.Material{}).
		Joins("JOIN product_materials ON product_materials.material_id = materials.id").
		Where("product_materials.product_id = ?", productID).
		Find(&materials).Error
	return materials, err
}

// listLookup is shared by the five name/description lookup entities.
func (s *Service) listLookup(ctx context.Context, dest interface{}, keyword string, status *models.CatalogStatus) error {
	q := s.DB.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	} else {
		q = q.Where("status <> ?", models.CatalogDeleted)
	}
	if keyword != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+keyword+"%")
	}
	return q.Order("id ASC").Find(dest).Error
}

func (s *Service) getLookup(ctx context.Context, dest interface{}, id uint) error {
	if err := s.DB.WithContext(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, keyword string, status *models.CatalogStatus) ([]models.Category, error) {
	var out []models.Category
	err := s.listLookup(ctx, &out, keyword, status)
	return out, err
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.getLookup(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) SaveCategory(ctx context.Context, c *models.Category) error {
	return s.DB.WithContext(ctx).Save(c).Error
}

func (s *Service) SoftDeleteCategory(ctx context.Context, c *models.Category) error {
	c.Status = models.CatalogDeleted
	return s.SaveCategory(ctx, c)
}

func (s *Service) ListBrands(ctx context.Context, keyword string, status *models.CatalogStatus) ([]models.Brand, error) {
	var out []models.Brand
	err := s.listLookup(ctx, &out, keyword, status)
	return out, err
}

func (s *Service) GetBrand(ctx context.Context, id uint) (*models.Brand, error) {
	var b models.Brand
	if err := s.getLookup(ctx, &b, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) SaveBrand(ctx context.Context, b *models.Brand) error {
	return s.DB.WithContext(ctx).Save(b).Error
}

func (s *Service) SoftDeleteBrand(ctx context.Context, b *models.Brand) error {
	b.Status = models.CatalogDeleted
	return s.SaveBrand(ctx, b)
}

func (s *Service) ListCollections(ctx context.Context, keyword string, status *models.CatalogStatus) ([]models.Collection, error) {
	var out []models.Collection
	err := s.listLookup(ctx, &out, keyword, status)
	return out, err
}

func (s *Service) GetCollection(ctx context.Context, id uint) (*models.Collection, error) {
	var c models.Collection
	if err := s.getLookup(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) SaveCollection(ctx context.Context, c *models.Collection) error {
	return s.DB.WithContext(ctx).Save(c).Error
}

func (s *Service) SoftDeleteCollection(ctx context.Context, c *models.Collection) error {
	c.Status = models.CatalogDeleted
	return s.SaveCollection(ctx, c)
}

func (s *Service) ListMaterials(ctx context.Context, keyword string, status *models.CatalogStatus) ([]models.Material, error) {
	var out []models.Material
	err := s.listLookup(ctx, &out, keyword, status)
	return out, err
}

func (s *Service) GetMaterial(ctx context.Context, id uint) (*models.Material, error) {
	var m models.Material
	if err := s.getLookup(ctx, &m, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) SaveMaterial(ctx context.Context, m *models.Material) error {
	return s.DB.WithContext(ctx).Save(m).Error
}

func (s *Service) SoftDeleteMaterial(ctx context.Context, m *models.Material) error {
	m.Status = models.CatalogDeleted
	return s.SaveMaterial(ctx, m)
}

func (s *Service) ListProductTypes(ctx context.Context, keyword string, status *models.CatalogStatus) ([]models.ProductType, error) {
	var out []models.ProductType
	err := s.listLookup(ctx, &out, keyword, status)
	return out, err
}

func (s *Service) GetProductType(ctx context.Context, id uint) (*models.ProductType, error) {
	var t models.ProductType
	if err := s.getLookup(ctx, &t, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) SaveProductType(ctx context.Context, t *models.ProductType) error {
	return s.DB.WithContext(ctx).Save(t).Error
}

func (s *Service) SoftDeleteProductType(ctx context.Context, t *models.ProductType) error {
	t.Status = models.CatalogDeleted
	return s.SaveProductType(ctx, t)
}
