package invoice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/pricing"
)

const defaultAllocRetries = 5

// Service creates and reads invoice snapshots.
type Service struct {
	store    Store
	seq      *Sequence
	validate *validator.Validate
	retries  int
	now      func() time.Time
}

// ServiceConfig configures the invoice service.
type ServiceConfig struct {
	Store        Store
	Sequence     *Sequence
	AllocRetries int
}

// CreateInput is the invoice creation payload. Totals are never taken
// from the client; the pricing engine recomputes everything server-side.
type CreateInput struct {
	Items        []Item               `json:"items" validate:"dive"`
	BillDiscount pricing.BillDiscount `json:"billDiscount"`
}

// NewService constructs an invoice service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("invoice: store is required")
	}
	if cfg.Sequence == nil {
		return nil, errors.New("invoice: sequence is required")
	}
	retries := cfg.AllocRetries
	if retries <= 0 {
		retries = defaultAllocRetries
	}
	return &Service{
		store:    cfg.Store,
		seq:      cfg.Sequence,
		validate: validator.New(),
		retries:  retries,
		now:      time.Now,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates the payload, computes totals, allocates the next
// invoice number, and persists the snapshot. A uniqueness collision on
// the number triggers re-allocation, bounded by the retry budget.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (Snapshot, error) {
	if err := s.validate.Struct(input); err != nil {
		return Snapshot{}, common.NewAppError("VALIDATION_ERROR", "invalid invoice payload", http.StatusBadRequest, err)
	}
	discount := input.BillDiscount
	switch discount.Type {
	case pricing.DiscountPercentage, pricing.DiscountAmount:
	case "":
		discount.Type = pricing.DiscountPercentage
	default:
		return Snapshot{}, common.NewAppError("VALIDATION_ERROR", "billDiscount.type must be percentage or amount", http.StatusBadRequest, nil)
	}

	lines := LineItems(input.Items)
	totals := pricing.Compute(lines, discount)

	items := make([]Item, len(input.Items))
	for i, item := range input.Items {
		item.Name = strings.TrimSpace(item.Name)
		item.Amount = lines[i].Amount()
		items[i] = item
	}

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		number, err := s.seq.Next(ctx, userID)
		if err != nil {
			return Snapshot{}, err
		}

		inserted, err := s.store.Insert(ctx, Snapshot{
			UserID:             userID,
			InvoiceNumber:      number,
			Items:              items,
			BillDiscount:       discount,
			Subtotal:           totals.Subtotal,
			ItemDiscounts:      totals.ItemDiscounts,
			BillDiscountAmount: totals.BillDiscountAmount,
			TotalDiscount:      totals.TotalDiscount,
			TotalSavings:       totals.TotalSavings,
			Total:              totals.Total,
			Status:             StatusCompleted,
		})
		if errors.Is(err, ErrDuplicateNumber) {
			if obs.NumberCollisionsTotal != nil {
				obs.NumberCollisionsTotal.Inc()
			}
			lastErr = err
			continue
		}
		if err != nil {
			return Snapshot{}, err
		}
		if obs.InvoicesCreatedTotal != nil {
			obs.InvoicesCreatedTotal.Inc()
		}
		return inserted, nil
	}
	return Snapshot{}, common.NewAppError("NUMBER_CONFLICT", "could not allocate a unique invoice number", http.StatusConflict, lastErr)
}

// List returns the account's invoices newest first.
func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Snapshot, common.Pagination, error) {
	snaps, total, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, common.Pagination{}, err
	}
	if snaps == nil {
		snaps = []Snapshot{}
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return snaps, common.Pagination{Page: page, PerPage: limit, TotalItems: total}, nil
}

// Get fetches a single snapshot owned by the account.
func (s *Service) Get(ctx context.Context, userID, id string) (Snapshot, error) {
	snap, err := s.store.Get(ctx, userID, id)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, common.NewAppError("NOT_FOUND", "invoice not found", http.StatusNotFound, err)
	}
	return snap, err
}

// PeekNumber reports the number the next created invoice would receive.
func (s *Service) PeekNumber(ctx context.Context, userID string) (string, error) {
	return s.seq.Peek(ctx, userID)
}
