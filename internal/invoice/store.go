package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-billing/internal/pricing"
)

var (
	ErrNotFound = errors.New("invoice: not found")
	// ErrDuplicateNumber signals a (user, invoice number) uniqueness
	// violation; the caller re-allocates and retries.
	ErrDuplicateNumber = errors.New("invoice: duplicate invoice number")
)

// ListFilter narrows a listing to a creation date range. Bounds are
// inclusive; zero values disable the bound.
type ListFilter struct {
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

// Store persists invoice snapshots. There is deliberately no update or
// delete: snapshots are immutable once written.
type Store interface {
	Insert(ctx context.Context, snap Snapshot) (Snapshot, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Snapshot, int64, error)
	Get(ctx context.Context, userID, id string) (Snapshot, error)
	HighestNumber(ctx context.Context, userID string) (string, error)
	SummaryBetween(ctx context.Context, userID string, from, to time.Time) (count int64, subtotal, discount, total float64, err error)
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]Snapshot, error)
}

// PGStore implements Store on a pgx connection pool. Items and the bill
// discount are stored as JSONB; aggregates are flat columns so reports
// can sum them in SQL.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) Insert(ctx context.Context, snap Snapshot) (Snapshot, error) {
	items, err := json.Marshal(snap.Items)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode items: %w", err)
	}
	discount, err := json.Marshal(snap.BillDiscount)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode bill discount: %w", err)
	}

	const q = `INSERT INTO invoices
(user_id, invoice_number, items, bill_discount, subtotal, item_discounts,
 bill_discount_amount, total_discount, total_savings, total, status)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id::text, created_at`
	err = s.Pool.QueryRow(ctx, q,
		snap.UserID, snap.InvoiceNumber, items, discount,
		snap.Subtotal, snap.ItemDiscounts, snap.BillDiscountAmount,
		snap.TotalDiscount, snap.TotalSavings, snap.Total, snap.Status,
	).Scan(&snap.ID, &snap.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Snapshot{}, ErrDuplicateNumber
		}
		return Snapshot{}, fmt.Errorf("insert invoice: %w", err)
	}
	return snap, nil
}

func (s *PGStore) List(ctx context.Context, userID string, f ListFilter) ([]Snapshot, int64, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	where := `WHERE user_id = $1::uuid`
	args := []any{userID}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT id::text, user_id::text, invoice_number, items, bill_discount,
subtotal, item_discounts, bill_discount_amount, total_discount, total_savings, total,
status, created_at
FROM invoices %s
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return out, total, nil
}

func (s *PGStore) Get(ctx context.Context, userID, id string) (Snapshot, error) {
	const q = `SELECT id::text, user_id::text, invoice_number, items, bill_discount,
subtotal, item_discounts, bill_discount_amount, total_discount, total_savings, total,
status, created_at
FROM invoices WHERE user_id = $1::uuid AND id = $2::uuid`
	snap, err := scanSnapshot(s.Pool.QueryRow(ctx, q, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	return snap, err
}

// HighestNumber returns the numerically largest invoice number for the
// account. Sorting by length first keeps INV-10000 above INV-9999.
func (s *PGStore) HighestNumber(ctx context.Context, userID string) (string, error) {
	const q = `SELECT invoice_number FROM invoices
WHERE user_id = $1::uuid
ORDER BY length(invoice_number) DESC, invoice_number DESC
LIMIT 1`
	var number string
	err := s.Pool.QueryRow(ctx, q, userID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("highest invoice number: %w", err)
	}
	return number, nil
}

func (s *PGStore) SummaryBetween(ctx context.Context, userID string, from, to time.Time) (int64, float64, float64, float64, error) {
	const q = `SELECT count(*),
COALESCE(sum(subtotal), 0), COALESCE(sum(total_discount), 0), COALESCE(sum(total), 0)
FROM invoices
WHERE user_id = $1::uuid AND created_at >= $2 AND created_at <= $3`
	var count int64
	var subtotal, discount, total float64
	if err := s.Pool.QueryRow(ctx, q, userID, from, to).Scan(&count, &subtotal, &discount, &total); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invoice summary: %w", err)
	}
	return count, subtotal, discount, total, nil
}

func (s *PGStore) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]Snapshot, error) {
	const q = `SELECT id::text, user_id::text, invoice_number, items, bill_discount,
subtotal, item_discounts, bill_discount_amount, total_discount, total_savings, total,
status, created_at
FROM invoices
WHERE user_id = $1::uuid AND created_at >= $2 AND created_at <= $3
ORDER BY created_at ASC, id ASC`
	rows, err := s.Pool.Query(ctx, q, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list invoices between: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices between: %w", err)
	}
	return out, nil
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var snap Snapshot
	var items, discount []byte
	err := row.Scan(
		&snap.ID, &snap.UserID, &snap.InvoiceNumber, &items, &discount,
		&snap.Subtotal, &snap.ItemDiscounts, &snap.BillDiscountAmount,
		&snap.TotalDiscount, &snap.TotalSavings, &snap.Total,
		&snap.Status, &snap.CreatedAt,
	)
	if err != nil {
		return Snapshot{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &snap.Items); err != nil {
			return Snapshot{}, fmt.Errorf("decode items: %w", err)
		}
	}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	if len(discount) > 0 {
		if err := json.Unmarshal(discount, &snap.BillDiscount); err != nil {
			return Snapshot{}, fmt.Errorf("decode bill discount: %w", err)
		}
	}
	if snap.BillDiscount.Type == "" {
		snap.BillDiscount.Type = pricing.DiscountPercentage
	}
	return snap, nil
}
