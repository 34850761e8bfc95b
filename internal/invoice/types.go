package invoice

import (
	"time"

	"github.com/noah-isme/backend-billing/internal/pricing"
)

// StatusCompleted is the only status an invoice snapshot carries.
// Snapshots are append-only; there is no draft or void lifecycle.
const StatusCompleted = "completed"

// Item is a stored invoice line. Amount is the computed quantity times
// effective rate, persisted redundantly at save time.
type Item struct {
	Name           string  `json:"name" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	Rate           float64 `json:"rate" validate:"gte=0"`
	DiscountedRate float64 `json:"discountedRate" validate:"gte=0"`
	Amount         float64 `json:"amount"`
}

// Snapshot is a persisted invoice. All aggregates are stored at save
// time so historical invoices keep their original arithmetic even if
// the engine changes.
type Snapshot struct {
	ID                 string               `json:"id"`
	UserID             string               `json:"-"`
	InvoiceNumber      string               `json:"invoiceNumber"`
	Items              []Item               `json:"items"`
	BillDiscount       pricing.BillDiscount `json:"billDiscount"`
	Subtotal           float64              `json:"subtotal"`
	ItemDiscounts      float64              `json:"itemDiscounts"`
	BillDiscountAmount float64              `json:"billDiscountAmount"`
	TotalDiscount      float64              `json:"totalDiscount"`
	TotalSavings       float64              `json:"totalSavings"`
	Total              float64              `json:"total"`
	CreatedAt          time.Time            `json:"createdAt"`
	Status             string               `json:"status"`
}

// LineItems converts stored items to pricing engine inputs.
func LineItems(items []Item) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	for i, item := range items {
		out[i] = pricing.LineItem{
			Name:           item.Name,
			Quantity:       item.Quantity,
			Rate:           item.Rate,
			DiscountedRate: item.DiscountedRate,
		}
	}
	return out
}
