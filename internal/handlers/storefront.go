package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/auth"
	"github.com/iamminhquan/jewelry-store/internal/models"
)

// StorefrontHandler covers the small storefront extras: product comments,
// favorites and the contact form.
type StorefrontHandler struct {
	DB *gorm.DB
}

func (h *StorefrontHandler) ListComments(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var comments []models.Comment
	err = h.DB.WithContext(c.Request().Context()).
		Where("product_id = ? AND hidden = ?", productID, false).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *StorefrontHandler) AddComment(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Content string `json:"content"`
		Rating  int16  `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		req.Rating = 5
	}

	comment := models.Comment{
		AccountID: accountID,
		ProductID: uint(productID),
		Content:   req.Content,
		Rating:    req.Rating,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *StorefrontHandler) ListFavorites(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var products []models.Product
	err = h.DB.WithContext(c.Request().Context()).Model(&models.Product{}).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.account_id = ? AND products.status <> ?", accountID, models.CatalogDeleted).
		Order("favorites.created_at DESC").
		Find(&products).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, products)
}

// ToggleFavorite adds the product to the account's favorites, or removes it
// if already present.
func (h *StorefrontHandler) ToggleFavorite(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	db := h.DB.WithContext(c.Request().Context())
	var fav models.Favorite
	err = db.Where("account_id = ? AND product_id = ?", accountID, productID).First(&fav).Error
	switch {
	case err == nil:
		if err := db.Delete(&fav).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]any{"favorited": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		fav = models.Favorite{AccountID: accountID, ProductID: uint(productID)}
		if err := db.Create(&fav).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]any{"favorited": true})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// SubmitContact is the only unauthenticated write endpoint.
func (h *StorefrontHandler) SubmitContact(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and message are required")
	}

	contact := models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&contact).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, contact)
}
