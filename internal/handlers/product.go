package handlers

import (
	"errors"
	"net/http"
	"strconv"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/iamminhquan/jewelry-store/internal/catalog"
	"github.com/iamminhquan/jewelry-store/internal/models"
	"github.com/iamminhquan/jewelry-store/internal/service/search"
	"github.com/iamminhquan/jewelry-store/internal/util"
)

const productIndex = "products"

// ProductHandler serves the public storefront catalog.
type ProductHandler struct {
	Catalog *catalog.Service
	ES      *elasticsearch.Client
}

func queryUint(c echo.Context, name string) *uint {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil
	}
	u := uint(v)
	return &u
}

func queryPage(c echo.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return util.Calculate(page, size)
}

func (h *ProductHandler) List(c echo.Context) error {
	offset, limit := queryPage(c)
	active := models.CatalogActive
	filter := catalog.ProductFilter{
		Keyword:      c.QueryParam("keyword"),
		Status:       &active,
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

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	product, err := h.Catalog.GetProduct(ctx, uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	// Soft-deleted products disappear from the storefront but stay readable
	// in the back office.
	if product.Status == models.CatalogDeleted {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

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

// Search runs the fuzzy full-text product search against Elasticsearch.
func (h *ProductHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	offset, limit := queryPage(c)

	total, products, err := search.Search(c.Request().Context(), h.ES, productIndex, query, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":    total,
		"products": products,
	})
}

func (h *ProductHandler) ListCategories(c echo.Context) error {
	active := models.CatalogActive
	out, err := h.Catalog.ListCategories(c.Request().Context(), c.QueryParam("keyword"), &active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) ListBrands(c echo.Context) error {
	active := models.CatalogActive
	out, err := h.Catalog.ListBrands(c.Request().Context(), c.QueryParam("keyword"), &active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) ListCollections(c echo.Context) error {
	active := models.CatalogActive
	out, err := h.Catalog.ListCollections(c.Request().Context(), c.QueryParam("keyword"), &active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) ListMaterials(c echo.Context) error {
	active := models.CatalogActive
	out, err := h.Catalog.ListMaterials(c.Request().Context(), c.QueryParam("keyword"), &active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) ListProductTypes(c echo.Context) error {
	active := models.CatalogActive
	out, err := h.Catalog.ListProductTypes(c.Request().Context(), c.QueryParam("keyword"), &active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
