package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an account has no stored document yet.
var ErrNotFound = errors.New("settings: not found")

// Store persists settings documents as raw JSON keyed by account.
type Store interface {
	CompanyRaw(ctx context.Context, userID string) ([]byte, error)
	SaveCompany(ctx context.Context, userID string, doc []byte) error
	PrinterRaw(ctx context.Context, userID string) ([]byte, error)
	SavePrinter(ctx context.Context, userID string, doc []byte) error
}

// PGStore implements Store on Postgres JSONB columns.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) CompanyRaw(ctx context.Context, userID string) ([]byte, error) {
	const q = `SELECT doc FROM companies WHERE user_id = $1::uuid`
	return s.fetch(ctx, q, userID, "company")
}

func (s *PGStore) SaveCompany(ctx context.Context, userID string, doc []byte) error {
	const q = `INSERT INTO companies (user_id, doc)
VALUES ($1::uuid, $2)
ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	if _, err := s.Pool.Exec(ctx, q, userID, doc); err != nil {
		return fmt.Errorf("save company: %w", err)
	}
	return nil
}

func (s *PGStore) PrinterRaw(ctx context.Context, userID string) ([]byte, error) {
	const q = `SELECT doc FROM printer_settings WHERE user_id = $1::uuid`
	return s.fetch(ctx, q, userID, "printer settings")
}

func (s *PGStore) SavePrinter(ctx context.Context, userID string, doc []byte) error {
	const q = `INSERT INTO printer_settings (user_id, doc)
VALUES ($1::uuid, $2)
ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	if _, err := s.Pool.Exec(ctx, q, userID, doc); err != nil {
		return fmt.Errorf("save printer settings: %w", err)
	}
	return nil
}

func (s *PGStore) fetch(ctx context.Context, query, userID, what string) ([]byte, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx, query, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return doc, nil
}
