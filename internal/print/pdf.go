package print

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/backend-billing/internal/settings"
)

// renderPDF lays out the invoice for laser printing on A4 or A5.
func renderPDF(doc Document) ([]byte, error) {
	paper := "A4"
	if doc.Settings.PaperSize == settings.PaperA5 {
		paper = "A5"
	}
	base := baseFontSize(doc.Settings.FontSize)

	fields := doc.Settings.InvoiceFields
	content := doc.Settings.CustomContent
	inv := doc.Invoice

	pdf := gofpdf.New("P", "mm", paper, "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	if fields.CompanyName && doc.Company.Name != "" {
		pdf.SetFont("Arial", "B", base+6)
		pdf.CellFormat(usable, 9, doc.Company.Name, "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", base)
	if fields.CompanyAddress && doc.Company.Address != "" {
		pdf.MultiCell(usable, 5, doc.Company.Address, "", "C", false)
	}
	if fields.PhoneNumber && doc.Company.Phone != "" {
		pdf.CellFormat(usable, 5, "Ph: "+doc.Company.Phone, "", 1, "C", false, 0, "")
	}
	if fields.Email && doc.Company.Email != "" {
		pdf.CellFormat(usable, 5, doc.Company.Email, "", 1, "C", false, 0, "")
	}
	if fields.GSTNumber && doc.Company.GSTIN != "" {
		pdf.CellFormat(usable, 5, "GSTIN: "+doc.Company.GSTIN, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	if fields.InvoiceTitle {
		pdf.SetFont("Arial", "B", base+4)
		pdf.CellFormat(usable, 8, "INVOICE", "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", base)
	if fields.InvoiceNumber {
		pdf.CellFormat(usable/2, 6, "Invoice No: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	}
	if fields.InvoiceDate && !inv.CreatedAt.IsZero() {
		pdf.CellFormat(usable/2, 6, "Date: "+inv.CreatedAt.Format("02/01/2006"), "", 1, "R", false, 0, "")
	} else if fields.InvoiceNumber {
		pdf.Ln(6)
	}
	pdf.Ln(2)

	nameW := usable * 0.45
	qtyW := usable * 0.15
	rateW := usable * 0.2
	amountW := usable * 0.2

	pdf.SetFont("Arial", "B", base)
	pdf.CellFormat(nameW, 7, "Item", "B", 0, "L", false, 0, "")
	if fields.ItemQuantity {
		pdf.CellFormat(qtyW, 7, "Qty", "B", 0, "R", false, 0, "")
	}
	if fields.ItemRate {
		pdf.CellFormat(rateW, 7, "Rate", "B", 0, "R", false, 0, "")
	}
	if fields.ItemAmount {
		pdf.CellFormat(amountW, 7, "Amount", "B", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", base)
	for _, item := range inv.Items {
		pdf.CellFormat(nameW, 6, item.Name, "", 0, "L", false, 0, "")
		if fields.ItemQuantity {
			pdf.CellFormat(qtyW, 6, trimFloat(item.Quantity), "", 0, "R", false, 0, "")
		}
		if fields.ItemRate {
			pdf.CellFormat(rateW, 6, money(effectiveRate(item.Rate, item.DiscountedRate)), "", 0, "R", false, 0, "")
		}
		if fields.ItemAmount {
			pdf.CellFormat(amountW, 6, money(item.Amount), "", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)

	totalRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, base)
		pdf.CellFormat(usable-amountW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(amountW, 6, value, "", 1, "R", false, 0, "")
	}
	if fields.Subtotal {
		totalRow("Subtotal", money(inv.Subtotal), false)
	}
	if fields.Discount && inv.TotalDiscount != 0 {
		totalRow("Discount", "-"+money(inv.TotalDiscount), false)
	}
	if fields.Total {
		totalRow("TOTAL", money(inv.Total), true)
	}
	if fields.SavedAmount && inv.TotalSavings > 0 {
		pdf.SetFont("Arial", "I", base)
		pdf.CellFormat(usable, 6, fmt.Sprintf("You saved %s!", money(inv.TotalSavings)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", base)
	if fields.ThankYouMessage && content.ThankYouMessage != "" {
		pdf.MultiCell(usable, 5, content.ThankYouMessage, "", "C", false)
	}
	if fields.TermsAndConditions && content.TermsAndConditions != "" {
		pdf.SetFont("Arial", "B", base)
		pdf.CellFormat(usable, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", base-1)
		pdf.MultiCell(usable, 4.5, content.TermsAndConditions, "", "L", false)
	}
	if fields.CustomNotes && content.CustomNotes != "" {
		pdf.MultiCell(usable, 4.5, content.CustomNotes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func baseFontSize(size string) float64 {
	switch size {
	case settings.FontSmall:
		return 8
	case settings.FontLarge:
		return 12
	default:
		return 10
	}
}
