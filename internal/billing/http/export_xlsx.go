package http

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fueldesk/fueldesk/internal/billing"
)

// buildLedgerXLSX renders the Bill Summary ledger as a spreadsheet, one row
// per organization plus a totals row.
func buildLedgerXLSX(month, year int, rows []billing.BillSummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Bill Summary"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Bill Summary — %s", periodDisplay(month, year)))

	for i, title := range ledgerHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}

	var totalBill float64
	var totalCoupons int
	for i, row := range rows {
		r := i + 4
		values := []interface{}{
			row.Serial, row.OrgName, row.LocalName,
			row.DieselBill, row.DieselCoupons,
			row.OctaneBill, row.OctaneCoupons,
			row.TotalBill, row.TotalCoupons,
			row.TaxRate,
			row.PreviousDue, row.Paid, row.Balance, row.CheckNo, row.Remarks,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
		totalBill += row.TotalBill
		totalCoupons += row.TotalCoupons
	}

	totalRow := len(rows) + 4
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), "Totals")
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), totalBill)
	_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", totalRow), totalCoupons)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
