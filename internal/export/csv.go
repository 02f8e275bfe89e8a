// Package export serializes the ledger for sharing: a tabular CSV, a
// full-fidelity JSON backup, and a spreadsheet workbook.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"penjualan/internal/core"
)

// CSVHeader is the external column contract. Order and names are fixed;
// consumers import this file into spreadsheets.
var CSVHeader = []string{
	"No", "Tanggal", "No Transaksi", "Pembeli", "Qty",
	"Harga Satuan", "Total Penjualan", "Total Modal", "Keuntungan",
}

// CSV renders one row per transaction in the order given (the ledger's
// most-recent-first order; no re-sort). The row index is 1-based and
// independent of the transaction code sequence. Numeric fields are raw
// numbers; a missing buyer renders as "-". Fields containing the delimiter
// or quotes are quoted per RFC 4180.
func CSV(transactions []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, t := range transactions {
		buyer := t.Buyer
		if buyer == "" {
			buyer = "-"
		}
		row := []string{
			strconv.Itoa(i + 1),
			t.Date.String(),
			t.TransactionCode,
			buyer,
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatInt(t.UnitSalePrice, 10),
			strconv.FormatInt(t.TotalRevenue, 10),
			strconv.FormatInt(t.TotalCost, 10),
			strconv.FormatInt(t.Profit, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVFilename returns the conventional download name for the given day.
func CSVFilename(day time.Time) string {
	return "catatan_penjualan_" + day.Format("2006-01-02") + ".csv"
}
