package print

import (
	"strings"
	"testing"
	"time"

	"github.com/noah-isme/backend-billing/internal/invoice"
	"github.com/noah-isme/backend-billing/internal/pricing"
	"github.com/noah-isme/backend-billing/internal/settings"
)

func sampleDocument() Document {
	return Document{
		Company: settings.CompanyProfile{
			Name:    "Acme Traders",
			Address: "12 Market Road",
			Phone:   "9876543210",
			GSTIN:   "29ABCDE1234F1Z5",
		},
		Settings: settings.DefaultPrinterSettings(),
		Invoice: invoice.Snapshot{
			InvoiceNumber: "INV-0042",
			Items: []invoice.Item{
				{Name: "Widget", Quantity: 2, Rate: 50, DiscountedRate: 40, Amount: 80},
				{Name: "Gadget", Quantity: 1, Rate: 20, Amount: 20},
			},
			BillDiscount:       pricing.BillDiscount{Type: pricing.DiscountPercentage, Value: 10},
			Subtotal:           120,
			ItemDiscounts:      20,
			BillDiscountAmount: 10,
			TotalDiscount:      30,
			TotalSavings:       30,
			Total:              90,
			CreatedAt:          time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
			Status:             invoice.StatusCompleted,
		},
	}
}

func TestRenderTextIncludesVisibleFields(t *testing.T) {
	out := string(renderText(sampleDocument()))

	for _, want := range []string{
		"ACME TRADERS",
		"Ph: 9876543210",
		"GSTIN: 29ABCDE1234F1Z5",
		"INVOICE",
		"Invoice No: INV-0042",
		"Date: 15/03/2026",
		"Widget",
		"2 x 40.00",
		"80.00",
		"Subtotal",
		"120.00",
		"-30.00",
		"TOTAL",
		"90.00",
		"You saved 30.00!",
		"Thank you for your business!",
		"Terms & Conditions:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("receipt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTextHonoursVisibilityFlags(t *testing.T) {
	doc := sampleDocument()
	doc.Settings.InvoiceFields.CompanyName = false
	doc.Settings.InvoiceFields.SavedAmount = false
	doc.Settings.InvoiceFields.TermsAndConditions = false
	doc.Settings.InvoiceFields.SeparatorLines = false

	out := string(renderText(doc))
	for _, banned := range []string{"ACME TRADERS", "You saved", "Terms & Conditions", "---"} {
		if strings.Contains(out, banned) {
			t.Fatalf("receipt should not contain %q:\n%s", banned, out)
		}
	}
	if !strings.Contains(out, "Invoice No: INV-0042") {
		t.Fatalf("visible fields must survive:\n%s", out)
	}
}

func TestRenderTextWidthFollowsPaperSize(t *testing.T) {
	doc := sampleDocument()
	doc.Settings.PaperSize = settings.Paper4Inch

	out := string(renderText(doc))
	if !strings.Contains(out, strings.Repeat("-", width4Inch)) {
		t.Fatalf("expected %d-column separators:\n%s", width4Inch, out)
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) > width4Inch {
			t.Fatalf("line exceeds paper width: %q", line)
		}
	}
}

func TestRenderTextRateFallsBackWithoutItemDiscount(t *testing.T) {
	doc := sampleDocument()
	out := string(renderText(doc))
	if !strings.Contains(out, "1 x 20.00") {
		t.Fatalf("undiscounted item should print its base rate:\n%s", out)
	}
}

func TestRenderTextSkipsDiscountRowWhenZero(t *testing.T) {
	doc := sampleDocument()
	doc.Invoice.TotalDiscount = 0
	doc.Invoice.TotalSavings = 0
	out := string(renderText(doc))
	if strings.Contains(out, "Discount") {
		t.Fatalf("zero discount should not print a row:\n%s", out)
	}
}

func TestRenderDispatchesOnPrinterType(t *testing.T) {
	doc := sampleDocument()

	ct, data, err := Render(doc)
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if ct != "text/plain; charset=utf-8" || len(data) == 0 {
		t.Fatalf("unexpected thermal render: %s (%d bytes)", ct, len(data))
	}

	doc.Settings.PrinterType = settings.PrinterLaser
	doc.Settings.PaperSize = settings.PaperA4
	ct, data, err = Render(doc)
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if ct != "application/pdf" {
		t.Fatalf("unexpected laser content type %s", ct)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("expected PDF magic bytes, got %q", string(data[:8]))
	}
}
