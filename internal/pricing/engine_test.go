package pricing

import "testing"

func TestComputeEmptyItems(t *testing.T) {
	discounts := []BillDiscount{
		{},
		{Type: DiscountPercentage, Value: 10},
		{Type: DiscountAmount, Value: 500},
	}
	for _, d := range discounts {
		got := Compute(nil, d)
		if got != (Totals{}) {
			t.Fatalf("empty item list with %+v: expected all zero aggregates, got %+v", d, got)
		}
	}
}

func TestEffectiveRateFallback(t *testing.T) {
	it := LineItem{Quantity: 3, Rate: 40, DiscountedRate: 0}
	if rate := it.EffectiveRate(); rate != 40 {
		t.Fatalf("expected fallback to rate 40, got %v", rate)
	}
	if discount := ItemDiscountTotal([]LineItem{it}); discount != 0 {
		t.Fatalf("line without override should contribute 0 item discount, got %v", discount)
	}
}

func TestZeroQuantityContributesNothing(t *testing.T) {
	items := []LineItem{{Quantity: 0, Rate: 999, DiscountedRate: 500}}
	got := Compute(items, BillDiscount{Type: DiscountPercentage, Value: 50})
	if got != (Totals{}) {
		t.Fatalf("zero-quantity line should yield zero aggregates, got %+v", got)
	}
}

func TestPercentageAppliesAfterItemDiscounts(t *testing.T) {
	items := []LineItem{{Quantity: 1, Rate: 100, DiscountedRate: 80}}
	d := BillDiscount{Type: DiscountPercentage, Value: 10}

	got := Compute(items, d)
	want := Totals{
		Subtotal:           100,
		ItemDiscounts:      20,
		BillDiscountAmount: 8,
		TotalDiscount:      28,
		TotalSavings:       28,
		Total:              72,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestAmountDiscountUncapped(t *testing.T) {
	items := []LineItem{{Quantity: 2, Rate: 50, DiscountedRate: 0}}
	d := BillDiscount{Type: DiscountAmount, Value: 500}

	got := Compute(items, d)
	if got.Subtotal != 100 || got.ItemDiscounts != 0 {
		t.Fatalf("unexpected base aggregates: %+v", got)
	}
	if got.BillDiscountAmount != 500 {
		t.Fatalf("amount discount must apply verbatim, got %v", got.BillDiscountAmount)
	}
	if got.Total != -400 {
		t.Fatalf("negative total is accepted, expected -400, got %v", got.Total)
	}
}

func TestNoBillDiscountIdentity(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, Rate: 30, DiscountedRate: 25},
		{Quantity: 1, Rate: 10},
		{Quantity: 4, Rate: 7.5, DiscountedRate: 5},
	}
	got := Compute(items, BillDiscount{})
	if got.Total != got.Subtotal-got.ItemDiscounts {
		t.Fatalf("grand total must equal subtotal minus item discounts without a bill discount: %+v", got)
	}
}

func TestSavingsEqualsDiscount(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, Rate: 20, DiscountedRate: 18},
		{Quantity: 1, Rate: 45},
	}
	for _, d := range []BillDiscount{
		{Type: DiscountPercentage, Value: 12.5},
		{Type: DiscountAmount, Value: 7},
	} {
		if TotalSavings(items, d) != TotalDiscount(items, d) {
			t.Fatalf("total savings must equal total discount for %+v", d)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	items := []LineItem{
		{Name: "a", Quantity: 1.5, Rate: 33.33, DiscountedRate: 30},
		{Name: "b", Quantity: 2, Rate: 0.1},
	}
	d := BillDiscount{Type: DiscountPercentage, Value: 7}
	first := Compute(items, d)
	second := Compute(items, d)
	if first != second {
		t.Fatalf("repeated computation diverged: %+v vs %+v", first, second)
	}
}

func TestComputeMatchesIndividualFunctions(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, Rate: 19.99, DiscountedRate: 15},
		{Quantity: 1, Rate: 5},
	}
	d := BillDiscount{Type: DiscountAmount, Value: 3}
	got := Compute(items, d)
	if got.Subtotal != Subtotal(items) ||
		got.ItemDiscounts != ItemDiscountTotal(items) ||
		got.BillDiscountAmount != BillDiscountAmount(items, d) ||
		got.TotalDiscount != TotalDiscount(items, d) ||
		got.Total != GrandTotal(items, d) {
		t.Fatalf("bundle diverges from individual functions: %+v", got)
	}
}
