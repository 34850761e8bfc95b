package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/noah-isme/backend-billing/internal/invoice"
)

var csvHeader = []string{"Date", "Invoice Number", "Subtotal", "Discount", "Total"}

// renderCSV writes one row per invoice, oldest first, with money
// rounded to two decimals and dates as DD/MM/YYYY.
func renderCSV(snaps []invoice.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, snap := range snaps {
		row := []string{
			snap.CreatedAt.Format("02/01/2006"),
			snap.InvoiceNumber,
			fmt.Sprintf("%.2f", snap.Subtotal),
			fmt.Sprintf("%.2f", snap.TotalDiscount),
			fmt.Sprintf("%.2f", snap.Total),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
