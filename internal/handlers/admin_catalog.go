package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/catalog"
	"github.com/iamminhquan/jewelry-store/internal/models"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/service/search"
)

// AdminCatalogHandler is the back-office catalog surface: product CRUD, the
// lookup entities around products, contact requests and comment moderation.
type AdminCatalogHandler struct {
	DB       *gorm.DB
	Catalog  *catalog.Service
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

func (h *AdminCatalogHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicProductEvents, fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// index keeps the search index in step with the catalog; failures are logged,
// never surfaced to the admin.
func (h *AdminCatalogHandler) index(c echo.Context, p models.Product) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, productIndex, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *AdminCatalogHandler) unindex(c echo.Context, id uint) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteProduct(ctx, h.ES, productIndex, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
}

func parseStatus(c echo.Context) *models.CatalogStatus {
	raw := c.QueryParam("status")
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	s := models.CatalogStatus(v)
	if !s.Valid() {
		return nil
	}
	return &s
}

type productRequest struct {
	Name         string          `json:"name"`
	ImportPrice  decimal.Decimal `json:"import_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Weight       float64         `json:"weight"`
	Size         float64         `json:"size"`
	Gender       int16           `json:"gender"`
	Stock        int             `json:"stock"`
	Unit         string          `json:"unit"`
	Status       *int            `json:"status"`
	Description  string          `json:"description"`
	CategoryID   *uint           `json:"category_id"`
	TypeID       *uint           `json:"type_id"`
	CollectionID *uint           `json:"collection_id"`
	BrandID      *uint           `json:"brand_id"`
}

func (r *productRequest) apply(p *models.Product) {
	p.Name = r.Name
	p.ImportPrice = r.ImportPrice
	p.SellPrice = r.SellPrice
	p.Weight = r.Weight
	p.Size = r.Size
	p.Gender = r.Gender
	p.Stock = r.Stock
	p.Unit = r.Unit
	p.Description = r.Description
	p.CategoryID = r.CategoryID
	p.TypeID = r.TypeID
	p.CollectionID = r.CollectionID
	p.BrandID = r.BrandID
	if r.Status != nil && models.CatalogStatus(*r.Status).Valid() {
		p.Status = models.CatalogStatus(*r.Status)
	}
}

func (h *AdminCatalogHandler) ListProducts(c echo.Context) error {
	offset, limit := queryPage(c)
	filter := catalog.ProductFilter{
		Keyword:      c.QueryParam("keyword"),
		Status:       parseStatus(c),
		CategoryID:   queryUint(c, "category_id"),
		BrandID:      queryUint(c, "brand_id"),
		CollectionID: queryUint(c, "collection_id"),
		TypeID:       queryUint(c, "type_id"),
	}

	products, total, err := h.Catalog.ListProducts(c.Request().Context(), filter, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":    total,
		"products": products,
	})
}

func (h *AdminCatalogHandler) getProduct(c echo.Context) (*models.Product, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	product, err := h.Catalog.GetProduct(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return product, nil
}

func (h *AdminCatalogHandler) GetProduct(c echo.Context) error {
	product, err := h.getProduct(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	images, err := h.Catalog.Images(ctx, product.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	materials, err := h.Catalog.Materials(ctx, product.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"product":   product,
		"images":    images,
		"materials": materials,
	})
}

func (h *AdminCatalogHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	product := models.Product{Status: models.CatalogActive}
	req.apply(&product)
	if err := h.Catalog.CreateProduct(c.Request().Context(), &product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, product)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
	})
	return c.JSON(http.StatusCreated, product)
}

func (h *AdminCatalogHandler) UpdateProduct(c echo.Context) error {
	product, err := h.getProduct(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.apply(product)
	if err := h.Catalog.UpdateProduct(c.Request().Context(), product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, *product)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
	})
	return c.JSON(http.StatusOK, product)
}

func (h *AdminCatalogHandler) DeleteProduct(c echo.Context) error {
	product, err := h.getProduct(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.SoftDeleteProduct(c.Request().Context(), product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.unindex(c, product.ID)
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})
	return c.NoContent(http.StatusNoContent)
}

// lookupBody is shared by all five lookup entities.
type lookupBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      *int   `json:"status"`
}

func bindLookup(c echo.Context) (*lookupBody, error) {
	var req lookupBody
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	return &req, nil
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func lookupErr(err error, what string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (b *lookupBody) status() models.CatalogStatus {
	if b.Status != nil && models.CatalogStatus(*b.Status).Valid() {
		return models.CatalogStatus(*b.Status)
	}
	return models.CatalogActive
}

func (h *AdminCatalogHandler) ListCategories(c echo.Context) error {
	out, err := h.Catalog.ListCategories(c.Request().Context(), c.QueryParam("keyword"), parseStatus(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCatalogHandler) CreateCategory(c echo.Context) error {
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity := models.Category{Name: req.Name, Description: req.Description, Status: req.status()}
	if err := h.Catalog.SaveCategory(c.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, entity)
}

func (h *AdminCatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "category")
	}
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity.Name, entity.Description, entity.Status = req.Name, req.Description, req.status()
	if err := h.Catalog.SaveCategory(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}

func (h *AdminCatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "category")
	}
	if err := h.Catalog.SoftDeleteCategory(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ListBrands(c echo.Context) error {
	out, err := h.Catalog.ListBrands(c.Request().Context(), c.QueryParam("keyword"), parseStatus(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCatalogHandler) CreateBrand(c echo.Context) error {
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity := models.Brand{Name: req.Name, Description: req.Description, Status: req.status()}
	if err := h.Catalog.SaveBrand(c.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, entity)
}

func (h *AdminCatalogHandler) UpdateBrand(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetBrand(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "brand")
	}
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity.Name, entity.Description, entity.Status = req.Name, req.Description, req.status()
	if err := h.Catalog.SaveBrand(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}

func (h *AdminCatalogHandler) DeleteBrand(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetBrand(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "brand")
	}
	if err := h.Catalog.SoftDeleteBrand(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ListCollections(c echo.Context) error {
	out, err := h.Catalog.ListCollections(c.Request().Context(), c.QueryParam("keyword"), parseStatus(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCatalogHandler) CreateCollection(c echo.Context) error {
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity := models.Collection{Name: req.Name, Description: req.Description, Status: req.status()}
	if err := h.Catalog.SaveCollection(c.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, entity)
}

func (h *AdminCatalogHandler) UpdateCollection(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetCollection(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "collection")
	}
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity.Name, entity.Description, entity.Status = req.Name, req.Description, req.status()
	if err := h.Catalog.SaveCollection(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}

func (h *AdminCatalogHandler) DeleteCollection(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetCollection(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "collection")
	}
	if err := h.Catalog.SoftDeleteCollection(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ListMaterials(c echo.Context) error {
	out, err := h.Catalog.ListMaterials(c.Request().Context(), c.QueryParam("keyword"), parseStatus(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCatalogHandler) CreateMaterial(c echo.Context) error {
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity := models.Material{Name: req.Name, Description: req.Description, Status: req.status()}
	if err := h.Catalog.SaveMaterial(c.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, entity)
}

func (h *AdminCatalogHandler) UpdateMaterial(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetMaterial(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "material")
	}
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity.Name, entity.Description, entity.Status = req.Name, req.Description, req.status()
	if err := h.Catalog.SaveMaterial(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}

func (h *AdminCatalogHandler) DeleteMaterial(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetMaterial(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "material")
	}
	if err := h.Catalog.SoftDeleteMaterial(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ListProductTypes(c echo.Context) error {
	out, err := h.Catalog.ListProductTypes(c.Request().Context(), c.QueryParam("keyword"), parseStatus(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCatalogHandler) CreateProductType(c echo.Context) error {
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity := models.ProductType{Name: req.Name, Description: req.Description, Status: req.status()}
	if err := h.Catalog.SaveProductType(c.Request().Context(), &entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, entity)
}

func (h *AdminCatalogHandler) UpdateProductType(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetProductType(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "product type")
	}
	req, err := bindLookup(c)
	if err != nil {
		return err
	}
	entity.Name, entity.Description, entity.Status = req.Name, req.Description, req.status()
	if err := h.Catalog.SaveProductType(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entity)
}

func (h *AdminCatalogHandler) DeleteProductType(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entity, err := h.Catalog.GetProductType(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "product type")
	}
	if err := h.Catalog.SoftDeleteProductType(c.Request().Context(), entity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ListContacts(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Contact{})
	if raw := c.QueryParam("handled"); raw != "" {
		handled, err := strconv.ParseBool(raw)
		if err == nil {
			q = q.Where("handled = ?", handled)
		}
	}

	var contacts []models.Contact
	if err := q.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *AdminCatalogHandler) MarkContactHandled(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	db := h.DB.WithContext(c.Request().Context())
	var contact models.Contact
	if err := db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	contact.Handled = true
	if err := db.Save(&contact).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *AdminCatalogHandler) ListComments(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Comment{})
	if pid := queryUint(c, "product_id"); pid != nil {
		q = q.Where("product_id = ?", *pid)
	}

	var comments []models.Comment
	if err := q.Order("created_at DESC").Find(&comments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// SetCommentHidden toggles moderation on one comment.
func (h *AdminCatalogHandler) SetCommentHidden(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	db := h.DB.WithContext(c.Request().Context())
	var comment models.Comment
	if err := db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment.Hidden = req.Hidden
	if err := db.Save(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}
