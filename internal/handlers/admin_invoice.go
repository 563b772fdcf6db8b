package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iamminhquan/jewelry-store/internal/invoice"
	"github.com/iamminhquan/jewelry-store/internal/models"
)

// AdminInvoiceHandler is the back-office invoice ledger: filtered listings,
// manual creation and edits, and soft deletion.
type AdminInvoiceHandler struct {
	Invoices *invoice.Service
}

func parseInvoiceFilter(c echo.Context) invoice.Filter {
	f := invoice.Filter{Keyword: c.QueryParam("keyword")}

	if raw := c.QueryParam("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			status := models.InvoiceStatus(v)
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

func (h *AdminInvoiceHandler) List(c echo.Context) error {
	offset, limit := queryPage(c)
	invoices, total, err := h.Invoices.List(c.Request().Context(), parseInvoiceFilter(c), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":    total,
		"invoices": invoices,
	})
}

func (h *AdminInvoiceHandler) Counts(c echo.Context) error {
	counts, err := h.Invoices.CountByStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *AdminInvoiceHandler) get(c echo.Context) (*models.Invoice, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.Invoices.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return inv, nil
}

func (h *AdminInvoiceHandler) Get(c echo.Context) error {
	inv, err := h.get(c)
	if err != nil {
		return err
	}
	items, err := h.Invoices.ItemsWithProducts(c.Request().Context(), inv.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"invoice": inv,
		"items":   items,
	})
}

func (h *AdminInvoiceHandler) Create(c echo.Context) error {
	var req struct {
		AccountID uint            `json:"account_id"`
		Subtotal  decimal.Decimal `json:"subtotal"`
		PlacedAt  *time.Time      `json:"placed_at"`
		Status    int             `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.AccountID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	inv, err := h.Invoices.Create(c.Request().Context(), req.AccountID, req.Subtotal, req.PlacedAt, models.InvoiceStatus(req.Status))
	if err != nil {
		if errors.Is(err, invoice.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *AdminInvoiceHandler) Update(c echo.Context) error {
	inv, err := h.get(c)
	if err != nil {
		return err
	}

	var req struct {
		Subtotal *decimal.Decimal `json:"subtotal"`
		PlacedAt *time.Time       `json:"placed_at"`
		Status   *int             `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var status *models.InvoiceStatus
	if req.Status != nil {
		s := models.InvoiceStatus(*req.Status)
		status = &s
	}

	inv, err = h.Invoices.Update(c.Request().Context(), inv, req.Subtotal, req.PlacedAt, status)
	if err != nil {
		if errors.Is(err, invoice.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *AdminInvoiceHandler) Delete(c echo.Context) error {
	inv, err := h.get(c)
	if err != nil {
		return err
	}
	if err := h.Invoices.SoftDelete(c.Request().Context(), inv); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
