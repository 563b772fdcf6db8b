package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamminhquan/jewelry-store/internal/auth"
	"github.com/iamminhquan/jewelry-store/internal/cart"
	"github.com/iamminhquan/jewelry-store/internal/catalog"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/order"
)

type CartHandler struct {
	Carts    *cart.Service
	Catalog  *catalog.Service
	Orders   *order.Service
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicCartEvents, fmt.Sprint(event["accountID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	activeCart, err := h.Carts.GetOrCreateActiveCart(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items, err := h.Carts.Items(ctx, activeCart.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	total, quantity := cart.Totals(items)
	return c.JSON(http.StatusOK, map[string]any{
		"cart":           activeCart,
		"items":          items,
		"total":          total,
		"total_quantity": quantity,
	})
}

// ItemCount backs the cart badge in the storefront header.
func (h *CartHandler) ItemCount(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	count, err := h.Carts.ItemCount(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"count": count})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	product, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	activeCart, err := h.Carts.GetOrCreateActiveCart(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	item, err := h.Carts.AddProduct(ctx, activeCart, product)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"accountID": accountID,
		"productID": product.ID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

// UpdateQuantity applies an increase/decrease action to one line item.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	activeCart, err := h.Carts.ActiveCart(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cart not found")
	}
	item, err := h.Carts.Item(ctx, activeCart.ID, uint(productID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	alive, err := h.Carts.UpdateItemQuantity(ctx, activeCart, item, req.Action)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_updated",
		"accountID": accountID,
		"productID": productID,
		"action":    req.Action,
	})
	if !alive {
		return c.JSON(http.StatusOK, map[string]any{"deleted_item": productID})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	activeCart, err := h.Carts.ActiveCart(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cart not found")
	}
	item, err := h.Carts.Item(ctx, activeCart.ID, uint(productID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	if err := h.Carts.RemoveItem(ctx, activeCart, item); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"accountID": accountID,
		"productID": productID,
	})
	return c.JSON(http.StatusOK, map[string]any{"deleted_item": productID})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	activeCart, err := h.Carts.ActiveCart(ctx, accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err := h.Carts.Clear(ctx, activeCart.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_cleared",
		"accountID": accountID,
		"cartID":    activeCart.ID,
	})
	return c.NoContent(http.StatusNoContent)
}

// Checkout freezes the open cart into a PENDING order.
func (h *CartHandler) Checkout(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	activeCart, err := h.Carts.ActiveCart(ctx, accountID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items, err := h.Carts.Items(ctx, activeCart.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	newOrder, err := h.Orders.CreateOrderFromCart(ctx, accountID, activeCart, items)
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "order_created",
		"accountID": accountID,
		"orderID":   newOrder.ID,
	})
	return c.JSON(http.StatusCreated, newOrder)
}

// BuyNow creates an order straight from one product, bypassing the cart.
func (h *CartHandler) BuyNow(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()
	product, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	newOrder, err := h.Orders.CreateOrderFromProduct(ctx, accountID, product, req.Quantity)
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "order_created",
		"accountID": accountID,
		"orderID":   newOrder.ID,
	})
	return c.JSON(http.StatusCreated, newOrder)
}
