package print

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-billing/internal/settings"
)

// Receipt widths in characters for thermal paper.
const (
	width3Inch = 32
	width4Inch = 42
)

// renderText lays out a thermal receipt. Every optional line is gated
// on its visibility flag.
func renderText(doc Document) []byte {
	width := width3Inch
	if doc.Settings.PaperSize == settings.Paper4Inch {
		width = width4Inch
	}

	fields := doc.Settings.InvoiceFields
	content := doc.Settings.CustomContent
	inv := doc.Invoice

	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	separator := func() {
		if fields.SeparatorLines {
			writeLine(strings.Repeat("-", width))
		}
	}

	if fields.CompanyName && doc.Company.Name != "" {
		writeLine(center(strings.ToUpper(doc.Company.Name), width))
	}
	if fields.CompanyAddress && doc.Company.Address != "" {
		for _, line := range wrap(doc.Company.Address, width) {
			writeLine(center(line, width))
		}
	}
	if fields.PhoneNumber && doc.Company.Phone != "" {
		writeLine(center("Ph: "+doc.Company.Phone, width))
	}
	if fields.Email && doc.Company.Email != "" {
		writeLine(center(doc.Company.Email, width))
	}
	if fields.GSTNumber && doc.Company.GSTIN != "" {
		writeLine(center("GSTIN: "+doc.Company.GSTIN, width))
	}
	separator()

	if fields.InvoiceTitle {
		writeLine(center("INVOICE", width))
	}
	if fields.InvoiceNumber {
		writeLine("Invoice No: " + inv.InvoiceNumber)
	}
	if fields.InvoiceDate && !inv.CreatedAt.IsZero() {
		writeLine("Date: " + inv.CreatedAt.Format("02/01/2006"))
	}
	separator()

	for _, item := range inv.Items {
		writeLine(truncate(item.Name, width))
		detail := ""
		if fields.ItemQuantity && fields.ItemRate {
			detail = fmt.Sprintf("  %s x %s", trimFloat(item.Quantity), money(effectiveRate(item.Rate, item.DiscountedRate)))
		} else if fields.ItemQuantity {
			detail = fmt.Sprintf("  x %s", trimFloat(item.Quantity))
		} else if fields.ItemRate {
			detail = fmt.Sprintf("  @ %s", money(effectiveRate(item.Rate, item.DiscountedRate)))
		}
		if fields.ItemAmount {
			writeLine(row(detail, money(item.Amount), width))
		} else if detail != "" {
			writeLine(detail)
		}
	}
	separator()

	if fields.Subtotal {
		writeLine(row("Subtotal", money(inv.Subtotal), width))
	}
	if fields.Discount && inv.TotalDiscount != 0 {
		writeLine(row("Discount", "-"+money(inv.TotalDiscount), width))
	}
	if fields.Total {
		writeLine(row("TOTAL", money(inv.Total), width))
	}
	if fields.SavedAmount && inv.TotalSavings > 0 {
		writeLine(center(fmt.Sprintf("You saved %s!", money(inv.TotalSavings)), width))
	}
	separator()

	if fields.ThankYouMessage && content.ThankYouMessage != "" {
		for _, line := range wrap(content.ThankYouMessage, width) {
			writeLine(center(line, width))
		}
	}
	if fields.TermsAndConditions && content.TermsAndConditions != "" {
		writeLine("Terms & Conditions:")
		for _, para := range strings.Split(content.TermsAndConditions, "\n") {
			for _, line := range wrap(para, width) {
				writeLine(line)
			}
		}
	}
	if fields.CustomNotes && content.CustomNotes != "" {
		for _, para := range strings.Split(content.CustomNotes, "\n") {
			for _, line := range wrap(para, width) {
				writeLine(line)
			}
		}
	}

	return []byte(b.String())
}

func effectiveRate(rate, discounted float64) float64 {
	if discounted > 0 {
		return discounted
	}
	return rate
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// trimFloat renders whole quantities without a decimal point.
func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// row left-aligns the label and right-aligns the value on one line.
func row(label, value string, width int) string {
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}

// wrap splits text into lines no longer than width, breaking on spaces.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
