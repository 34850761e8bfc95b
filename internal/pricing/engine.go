// Package pricing computes invoice money amounts from line items and a
// whole-bill discount. Every function is a pure function of its inputs:
// no persistence, no randomness, no formatting. Amounts are plain
// float64 values; presentation layers round to two decimals for display
// while stored values keep the unrounded results.
package pricing

// DiscountType selects how a bill-level discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage interprets the value as a percent of the
	// subtotal net of item discounts.
	DiscountPercentage DiscountType = "percentage"
	// DiscountAmount interprets the value as a flat currency amount.
	DiscountAmount DiscountType = "amount"
)

// LineItem is one invoice row: a named quantity of something at a rate.
// DiscountedRate is an optional override unit price; zero means the
// override is not set.
type LineItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Rate           float64 `json:"rate"`
	DiscountedRate float64 `json:"discountedRate"`
}

// EffectiveRate is the rate actually used for extension. A zero
// discounted rate falls back to the regular rate, so a genuinely free
// discounted line cannot be distinguished from "no override"; both
// extend at Rate.
func (it LineItem) EffectiveRate() float64 {
	if it.DiscountedRate > 0 {
		return it.DiscountedRate
	}
	return it.Rate
}

// Amount extends the line at its effective rate.
func (it LineItem) Amount() float64 {
	return it.Quantity * it.EffectiveRate()
}

// BillDiscount is a single additional discount applied to the whole
// invoice after per-item discounts.
type BillDiscount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// Totals aggregates every computed pricing component of an invoice.
type Totals struct {
	Subtotal           float64 `json:"subtotal"`
	ItemDiscounts      float64 `json:"itemDiscounts"`
	BillDiscountAmount float64 `json:"billDiscountAmount"`
	TotalDiscount      float64 `json:"totalDiscount"`
	TotalSavings       float64 `json:"totalSavings"`
	Total              float64 `json:"total"`
}

// Subtotal sums quantity times the undiscounted rate over all items,
// establishing the sticker-price baseline.
func Subtotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Quantity * it.Rate
	}
	return sum
}

// ItemDiscountTotal sums the savings attributable to per-line discounted
// rates. Lines without an override contribute zero.
func ItemDiscountTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Quantity*it.Rate - it.Quantity*it.EffectiveRate()
	}
	return sum
}

// BillDiscountAmount computes the whole-bill discount. Percentage
// discounts apply to the subtotal net of item discounts, not the raw
// subtotal. Amount discounts are taken verbatim and are not capped, so
// the grand total can go negative; callers accept that. An empty item
// list yields zero for either type.
func BillDiscountAmount(items []LineItem, d BillDiscount) float64 {
	if len(items) == 0 {
		return 0
	}
	if d.Type == DiscountPercentage {
		afterItemDiscounts := Subtotal(items) - ItemDiscountTotal(items)
		return afterItemDiscounts * d.Value / 100
	}
	return d.Value
}

// TotalDiscount combines per-item and whole-bill discounts.
func TotalDiscount(items []LineItem, d BillDiscount) float64 {
	return ItemDiscountTotal(items) + BillDiscountAmount(items, d)
}

// TotalSavings is the same quantity as TotalDiscount. The product treats
// "discount" and "savings" as one number; the identity is kept as
// observed pending product clarification.
func TotalSavings(items []LineItem, d BillDiscount) float64 {
	return TotalDiscount(items, d)
}

// GrandTotal is the amount payable after all discounts.
func GrandTotal(items []LineItem, d BillDiscount) float64 {
	return Subtotal(items) - TotalDiscount(items, d)
}

// Compute calculates every aggregate for the provided inputs.
func Compute(items []LineItem, d BillDiscount) Totals {
	subtotal := Subtotal(items)
	itemDiscounts := ItemDiscountTotal(items)
	billDiscount := BillDiscountAmount(items, d)
	totalDiscount := itemDiscounts + billDiscount
	return Totals{
		Subtotal:           subtotal,
		ItemDiscounts:      itemDiscounts,
		BillDiscountAmount: billDiscount,
		TotalDiscount:      totalDiscount,
		TotalSavings:       totalDiscount,
		Total:              subtotal - totalDiscount,
	}
}
