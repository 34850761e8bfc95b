package print

import (
	"github.com/noah-isme/backend-billing/internal/invoice"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/settings"
)

// Document bundles everything a rendered invoice needs.
type Document struct {
	Company  settings.CompanyProfile
	Settings settings.PrinterSettings
	Invoice  invoice.Snapshot
}

// Render produces the printable form of the invoice. Thermal printers
// get a plain-text receipt sized to the paper width; laser printers get
// a PDF.
func Render(doc Document) (contentType string, data []byte, err error) {
	doc.Settings.Normalize()
	switch doc.Settings.PrinterType {
	case settings.PrinterLaser:
		data, err = renderPDF(doc)
		if err != nil {
			return "", nil, err
		}
		countRender("pdf")
		return "application/pdf", data, nil
	default:
		data = renderText(doc)
		countRender("text")
		return "text/plain; charset=utf-8", data, nil
	}
}

func countRender(format string) {
	if obs.PrintRendersTotal != nil {
		obs.PrintRendersTotal.WithLabelValues(format).Inc()
	}
}
