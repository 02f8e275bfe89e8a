package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"penjualan/internal/core"
)

// XLSX renders the ledger as a spreadsheet: the CSV table plus a bold totals
// row, with the store and product names above the header.
func XLSX(settings core.Settings, transactions []core.Transaction) ([]byte, error) {
	xlsx := excelize.NewFile()

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())

	_ = xlsx.SetColWidth(sheet, "A", "A", 6)
	_ = xlsx.SetColWidth(sheet, "B", "C", 16)
	_ = xlsx.SetColWidth(sheet, "D", "D", 22)
	_ = xlsx.SetColWidth(sheet, "E", "E", 8)
	_ = xlsx.SetColWidth(sheet, "F", "I", 16)

	bold, _ := xlsx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	row := 1
	_ = xlsx.SetCellValue(sheet, cell('A', row), settings.StoreName)
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), bold)
	row++
	_ = xlsx.SetCellValue(sheet, cell('A', row), settings.ProductName)
	row += 2

	for i, h := range CSVHeader {
		_ = xlsx.SetCellValue(sheet, cell(rune('A'+i), row), h)
	}
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('I', row), bold)
	row++

	var totalQty, totalRevenue, totalCost, totalProfit int64
	for i, t := range transactions {
		buyer := t.Buyer
		if buyer == "" {
			buyer = "-"
		}
		_ = xlsx.SetCellValue(sheet, cell('A', row), i+1)
		_ = xlsx.SetCellValue(sheet, cell('B', row), t.Date.String())
		_ = xlsx.SetCellValue(sheet, cell('C', row), t.TransactionCode)
		_ = xlsx.SetCellValue(sheet, cell('D', row), buyer)
		_ = xlsx.SetCellValue(sheet, cell('E', row), t.Quantity)
		_ = xlsx.SetCellValue(sheet, cell('F', row), t.UnitSalePrice)
		_ = xlsx.SetCellValue(sheet, cell('G', row), t.TotalRevenue)
		_ = xlsx.SetCellValue(sheet, cell('H', row), t.TotalCost)
		_ = xlsx.SetCellValue(sheet, cell('I', row), t.Profit)
		row++

		totalQty += t.Quantity
		totalRevenue += t.TotalRevenue
		totalCost += t.TotalCost
		totalProfit += t.Profit
	}

	_ = xlsx.SetCellValue(sheet, cell('D', row), "Total")
	_ = xlsx.SetCellValue(sheet, cell('E', row), totalQty)
	_ = xlsx.SetCellValue(sheet, cell('G', row), totalRevenue)
	_ = xlsx.SetCellValue(sheet, cell('H', row), totalCost)
	_ = xlsx.SetCellValue(sheet, cell('I', row), totalProfit)
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('I', row), bold)

	_ = xlsx.SetSheetName(sheet, "Catatan Penjualan")

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXFilename returns the conventional download name for the given day.
func XLSXFilename(day time.Time) string {
	return "catatan_penjualan_" + day.Format("2006-01-02") + ".xlsx"
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}
