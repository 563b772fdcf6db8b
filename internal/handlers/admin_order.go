package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iamminhquan/jewelry-store/internal/models"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
	"github.com/iamminhquan/jewelry-store/internal/order"
)

// AdminOrderHandler is the back-office order surface: filtered listings,
// status transitions and order edits.
type AdminOrderHandler struct {
	Orders   *order.Service
	Producer *mykafka.Producer
}

func (h *AdminOrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func parseOrderFilter(c echo.Context) order.Filter {
	f := order.Filter{Keyword: c.QueryParam("keyword")}

	if raw := c.QueryParam("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			status := models.OrderStatus(v)
			if status.Valid() {
				f.Status = &status
			}
		}
	}
	if raw := c.QueryParam("date_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.DateFrom = &t
		}
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			f.DateTo = &end
		}
	}
	if raw := c.QueryParam("min_value"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			f.MinValue = &v
		}
	}
	if raw := c.QueryParam("max_value"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			f.MaxValue = &v
		}
	}
	return f
}

func (h *AdminOrderHandler) List(c echo.Context) error {
	offset, limit := queryPage(c)
	orders, total, err := h.Orders.List(c.Request().Context(), parseOrderFilter(c), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":  total,
		"orders": orders,
	})
}

func (h *AdminOrderHandler) Counts(c echo.Context) error {
	counts, err := h.Orders.CountByStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *AdminOrderHandler) get(c echo.Context) (*models.Order, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ord, err := h.Orders.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ord, nil
}

func (h *AdminOrderHandler) Get(c echo.Context) error {
	ord, err := h.get(c)
	if err != nil {
		return err
	}
	items, err := h.Orders.ItemsWithProducts(c.Request().Context(), ord.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"order": ord,
		"items": items,
	})
}

func (h *AdminOrderHandler) Confirm(c echo.Context) error {
	ord, err := h.get(c)
	if err != nil {
		return err
	}

	ord, err = h.Orders.ConfirmOrder(c.Request().Context(), ord)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_confirmed",
		"orderID": ord.ID,
	})
	return c.JSON(http.StatusOK, ord)
}

func (h *AdminOrderHandler) Cancel(c echo.Context) error {
	ord, err := h.get(c)
	if err != nil {
		return err
	}

	cancelled, err := h.Orders.CancelOrder(c.Request().Context(), ord)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !cancelled {
		return echo.NewHTTPError(http.StatusConflict, "order can no longer be cancelled")
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"orderID": ord.ID,
		"by":      "admin",
	})
	return c.JSON(http.StatusOK, ord)
}

// UpdateStatus is the general transition endpoint. Completing an order
// returns the generated invoice alongside, and invoice_created says whether
// this call produced it or a previous completion already had.
func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	ord, err := h.get(c)
	if err != nil {
		return err
	}

	var req struct {
		Status int `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ord, inv, created, err := h.Orders.UpdateOrderStatus(c.Request().Context(), ord, models.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_status_updated",
		"orderID": ord.ID,
		"status":  int(ord.Status),
	})

	resp := map[string]any{"order": ord}
	if inv != nil {
		resp["invoice"] = inv
		resp["invoice_created"] = created
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminOrderHandler) Update(c echo.Context) error {
	ord, err := h.get(c)
	if err != nil {
		return err
	}

	var req struct {
		Subtotal *decimal.Decimal `json:"subtotal"`
		PlacedAt *time.Time       `json:"placed_at"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ord, err = h.Orders.UpdateOrder(c.Request().Context(), ord, req.Subtotal, req.PlacedAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ord)
}
