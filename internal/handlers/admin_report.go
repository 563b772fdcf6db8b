package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamminhquan/jewelry-store/internal/report"
)

const defaultReportDays = 30

// AdminReportHandler serves the back-office statistics pages and the xlsx
// export.
type AdminReportHandler struct {
	Reports *report.Service
}

func reportDays(c echo.Context) int {
	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil || days < 1 || days > 365 {
		return defaultReportDays
	}
	return days
}

func (h *AdminReportHandler) Dashboard(c echo.Context) error {
	dash, err := h.Reports.BuildDashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *AdminReportHandler) Report(c echo.Context) error {
	data, err := h.Reports.BuildReport(c.Request().Context(), reportDays(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, data)
}

func (h *AdminReportHandler) Revenue(c echo.Context) error {
	stats, err := h.Reports.RevenueStats(c.Request().Context(), reportDays(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminReportHandler) Purchases(c echo.Context) error {
	stats, err := h.Reports.PurchaseStats(c.Request().Context(), reportDays(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// Export streams the report as an xlsx workbook.
func (h *AdminReportHandler) Export(c echo.Context) error {
	data, err := h.Reports.BuildReport(c.Request().Context(), reportDays(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	f, err := report.BuildWorkbook(data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer f.Close()

	filename := fmt.Sprintf("bao-cao-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	return f.Write(c.Response())
}
