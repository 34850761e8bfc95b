package invoice

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-billing/internal/pricing"
)

// memStore is an in-memory Store enforcing the (user, number) unique
// constraint the way Postgres does.
type memStore struct {
	mu       sync.Mutex
	byID     map[string]Snapshot
	failures int
}

func newInvoiceMemStore() *memStore {
	return &memStore{byID: map[string]Snapshot{}}
}

func (m *memStore) Insert(_ context.Context, snap Snapshot) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return Snapshot{}, ErrDuplicateNumber
	}
	for _, existing := range m.byID {
		if existing.UserID == snap.UserID && existing.InvoiceNumber == snap.InvoiceNumber {
			return Snapshot{}, ErrDuplicateNumber
		}
	}
	snap.ID = uuid.NewString()
	snap.CreatedAt = time.Now()
	m.byID[snap.ID] = snap
	return snap, nil
}

func (m *memStore) List(_ context.Context, userID string, f ListFilter) ([]Snapshot, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []Snapshot
	for _, snap := range m.byID {
		if snap.UserID != userID {
			continue
		}
		if !f.From.IsZero() && snap.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && snap.CreatedAt.After(f.To) {
			continue
		}
		all = append(all, snap)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, int64(len(all)), nil
}

func (m *memStore) Get(_ context.Context, userID, id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.byID[id]
	if !ok || snap.UserID != userID {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (m *memStore) HighestNumber(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := ""
	bestN := -1
	for _, snap := range m.byID {
		if snap.UserID != userID {
			continue
		}
		if n := ParseNumber(snap.InvoiceNumber); n > bestN {
			bestN = n
			best = snap.InvoiceNumber
		}
	}
	return best, nil
}

func (m *memStore) SummaryBetween(_ context.Context, userID string, from, to time.Time) (int64, float64, float64, float64, error) {
	snaps, err := m.ListBetween(context.Background(), userID, from, to)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	var subtotal, discount, total float64
	for _, snap := range snaps {
		subtotal += snap.Subtotal
		discount += snap.TotalDiscount
		total += snap.Total
	}
	return int64(len(snaps)), subtotal, discount, total, nil
}

func (m *memStore) ListBetween(_ context.Context, userID string, from, to time.Time) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Snapshot
	for _, snap := range m.byID {
		if snap.UserID != userID || snap.CreatedAt.Before(from) || snap.CreatedAt.After(to) {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func newInvoiceService(t *testing.T, store *memStore) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Store:    store,
		Sequence: &Sequence{Store: store},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateComputesTotalsServerSide(t *testing.T) {
	store := newInvoiceMemStore()
	svc := newInvoiceService(t, store)

	snap, err := svc.Create(context.Background(), "user-1", CreateInput{
		Items: []Item{
			{Name: "Widget", Quantity: 2, Rate: 50, DiscountedRate: 40},
		},
		BillDiscount: pricing.BillDiscount{Type: pricing.DiscountPercentage, Value: 10},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.InvoiceNumber != "INV-0001" {
		t.Fatalf("unexpected number %s", snap.InvoiceNumber)
	}
	if snap.Subtotal != 100 {
		t.Fatalf("unexpected subtotal %v", snap.Subtotal)
	}
	if snap.ItemDiscounts != 20 {
		t.Fatalf("unexpected item discounts %v", snap.ItemDiscounts)
	}
	if snap.BillDiscountAmount != 8 {
		t.Fatalf("unexpected bill discount %v", snap.BillDiscountAmount)
	}
	if snap.TotalDiscount != 28 || snap.TotalSavings != 28 {
		t.Fatalf("unexpected discount/savings %v/%v", snap.TotalDiscount, snap.TotalSavings)
	}
	if snap.Total != 72 {
		t.Fatalf("unexpected total %v", snap.Total)
	}
	if snap.Status != StatusCompleted {
		t.Fatalf("unexpected status %s", snap.Status)
	}
	if snap.Items[0].Amount != 80 {
		t.Fatalf("expected stored item amount 80, got %v", snap.Items[0].Amount)
	}
}

func TestCreateEmptyItemsYieldsZeros(t *testing.T) {
	svc := newInvoiceService(t, newInvoiceMemStore())

	snap, err := svc.Create(context.Background(), "user-1", CreateInput{
		Items:        []Item{},
		BillDiscount: pricing.BillDiscount{Type: pricing.DiscountAmount, Value: 50},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Subtotal != 0 || snap.TotalDiscount != 0 || snap.Total != 0 {
		t.Fatalf("expected zero aggregates, got %+v", snap)
	}
}

func TestCreateNumbersAreSequential(t *testing.T) {
	svc := newInvoiceService(t, newInvoiceMemStore())
	ctx := context.Background()

	for i, want := range []string{"INV-0001", "INV-0002", "INV-0003"} {
		snap, err := svc.Create(ctx, "user-1", CreateInput{Items: []Item{{Name: "x", Quantity: 1, Rate: 1}}})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if snap.InvoiceNumber != want {
			t.Fatalf("expected %s, got %s", want, snap.InvoiceNumber)
		}
	}
}

func TestCreateRetriesOnDuplicateNumber(t *testing.T) {
	store := newInvoiceMemStore()
	store.failures = 2
	svc := newInvoiceService(t, store)

	snap, err := svc.Create(context.Background(), "user-1", CreateInput{
		Items: []Item{{Name: "x", Quantity: 1, Rate: 10}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.ID == "" {
		t.Fatal("expected snapshot persisted after retries")
	}
}

func TestCreateGivesUpAfterRetryBudget(t *testing.T) {
	store := newInvoiceMemStore()
	store.failures = 100
	svc, err := NewService(ServiceConfig{
		Store:        store,
		Sequence:     &Sequence{Store: store},
		AllocRetries: 3,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		Items: []Item{{Name: "x", Quantity: 1, Rate: 10}},
	}); err == nil {
		t.Fatal("expected allocation to give up")
	}
	if store.failures != 97 {
		t.Fatalf("expected exactly 3 attempts, %d failures left", store.failures)
	}
}

func TestCreateRejectsUnknownDiscountType(t *testing.T) {
	svc := newInvoiceService(t, newInvoiceMemStore())
	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Items:        []Item{{Name: "x", Quantity: 1, Rate: 10}},
		BillDiscount: pricing.BillDiscount{Type: "bogus", Value: 5},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetScopedToOwner(t *testing.T) {
	store := newInvoiceMemStore()
	svc := newInvoiceService(t, store)
	ctx := context.Background()

	snap, err := svc.Create(ctx, "user-1", CreateInput{Items: []Item{{Name: "x", Quantity: 1, Rate: 10}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", snap.ID); err == nil {
		t.Fatal("expected not found for foreign account")
	}
	got, err := svc.Get(ctx, "user-1", snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.InvoiceNumber != snap.InvoiceNumber {
		t.Fatalf("unexpected invoice %+v", got)
	}
}

func TestPeekNumberDoesNotAdvance(t *testing.T) {
	store := newInvoiceMemStore()
	svc := newInvoiceService(t, store)
	ctx := context.Background()

	peeked, err := svc.PeekNumber(ctx, "user-1")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if peeked != "INV-0001" {
		t.Fatalf("expected INV-0001, got %s", peeked)
	}
	snap, err := svc.Create(ctx, "user-1", CreateInput{Items: []Item{{Name: "x", Quantity: 1, Rate: 10}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.InvoiceNumber != peeked {
		t.Fatalf("expected create to use peeked number, got %s", snap.InvoiceNumber)
	}
}
