package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook serializes report aggregates into an xlsx workbook with one
// sheet for revenue and one for orders. The caller owns closing the file.
func BuildWorkbook(data ReportData) (*excelize.File, error) {
	f := excelize.NewFile()

	const revenueSheet = "Doanh thu"
	if err := f.SetSheetName("Sheet1", revenueSheet); err != nil {
		return nil, err
	}

	revenueRows := [][]interface{}{
		{"Chỉ số", "Giá trị"},
		{"Tổng doanh thu", data.Revenue.TotalRevenue.StringFixed(2)},
		{"Doanh thu tháng này", data.Revenue.RevenueThisMonth.StringFixed(2)},
		{"Doanh thu tháng trước", data.Revenue.RevenueLastMonth.StringFixed(2)},
		{"Tăng trưởng (%)", data.Revenue.GrowthPercent},
		{"Giá trị đơn trung bình", data.AvgOrderValue.StringFixed(2)},
	}
	revenueRows = append(revenueRows, []interface{}{}, []interface{}{"Ngày", "Doanh thu"})
	for _, d := range data.Revenue.DailyRevenue {
		revenueRows = append(revenueRows, []interface{}{d.Day, d.Amount.StringFixed(2)})
	}
	if err := writeRows(f, revenueSheet, revenueRows); err != nil {
		return nil, err
	}

	const orderSheet = "Đơn hàng"
	if _, err := f.NewSheet(orderSheet); err != nil {
		return nil, err
	}
	orderRows := [][]interface{}{
		{"Chỉ số", "Giá trị"},
		{"Tổng đơn hàng", data.Purchases.TotalOrders},
		{"Đã giao", data.Purchases.Delivered},
		{"Đang xử lý", data.Purchases.Pending},
		{"Đã hủy", data.Purchases.Cancelled},
		{"Đơn tháng này", data.Purchases.OrdersThisMonth},
		{"Đơn tháng trước", data.Purchases.OrdersLastMonth},
		{"Tăng trưởng (%)", data.Purchases.GrowthPercent},
		{"Tỷ lệ hủy (%)", data.Purchases.CancelRate},
	}
	orderRows = append(orderRows, []interface{}{}, []interface{}{"Ngày", "Số đơn"})
	for _, d := range data.Purchases.DailyOrders {
		orderRows = append(orderRows, []interface{}{d.Day, d.Total})
	}
	if err := writeRows(f, orderSheet, orderRows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
