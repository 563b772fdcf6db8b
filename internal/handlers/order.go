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
	"github.com/iamminhquan/jewelry-store/internal/invoice"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/order"
)

// OrderHandler serves the customer-facing order endpoints. Every lookup is
// scoped to the authenticated account.
type OrderHandler struct {
	Orders   *order.Service
	Invoices *invoice.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListForAccount(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMine(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	ord, err := h.Orders.GetForAccount(ctx, uint(orderID), accountID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items, err := h.Orders.ItemsWithProducts(ctx, ord.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"order": ord,
		"items": items,
	})
}

// CancelMine lets the customer cancel while the order is still pending or
// processing. Later states reject with 409.
func (h *OrderHandler) CancelMine(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	ord, err := h.Orders.GetForAccount(ctx, uint(orderID), accountID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cancelled, err := h.Orders.CancelUserOrder(ctx, ord)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !cancelled {
		return echo.NewHTTPError(http.StatusConflict, "order can no longer be cancelled")
	}

	h.publish(c, map[string]any{
		"type":      "order_cancelled",
		"orderID":   ord.ID,
		"accountID": accountID,
		"by":        "customer",
	})
	return c.JSON(http.StatusOK, ord)
}

// PurchaseHistory returns completed orders with their invoices and detailed
// line items.
func (h *OrderHandler) PurchaseHistory(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	history, err := h.Orders.PurchaseHistory(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}

func (h *OrderHandler) ListMyInvoices(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	invoices, err := h.Invoices.ListForAccount(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *OrderHandler) GetMyInvoice(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}
	invoiceID, err := strconv.Atoi(c.Param("id"))
	if err != nil || invoiceID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	inv, err := h.Invoices.GetForAccount(ctx, uint(invoiceID), accountID)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items, err := h.Invoices.ItemsWithProducts(ctx, inv.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"invoice": inv,
		"items":   items,
	})
}
