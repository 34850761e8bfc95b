package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-billing/internal/invoice"
)

// Source is the slice of invoice storage the reporting service needs.
type Source interface {
	SummaryBetween(ctx context.Context, userID string, from, to time.Time) (count int64, subtotal, totalDiscount, total float64, err error)
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]invoice.Snapshot, error)
}

// Summary aggregates invoices in a date range.
type Summary struct {
	Count         int64   `json:"count"`
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	Total         float64 `json:"total"`
}

// Service produces summaries and CSV exports over invoice snapshots.
// Summaries are cached briefly in Redis; a nil client disables caching.
type Service struct {
	source Source
	cache  *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// ServiceConfig configures the reporting service.
type ServiceConfig struct {
	Source   Source
	Cache    *redis.Client
	CacheTTL time.Duration
}

// NewService constructs a reporting service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("report: source is required")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{source: cfg.Source, cache: cfg.Cache, ttl: ttl, now: time.Now}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Summary computes the invoice aggregates for the range. Zero bounds
// mean unbounded on that side.
func (s *Service) Summary(ctx context.Context, userID string, from, to time.Time) (Summary, error) {
	from, to = s.normalizeRange(from, to)

	key := summaryKey(userID, from, to)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached Summary
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	count, subtotal, discount, total, err := s.source.SummaryBetween(ctx, userID, from, to)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Count: count, Subtotal: subtotal, TotalDiscount: discount, Total: total}

	if s.cache != nil {
		if data, err := json.Marshal(sum); err == nil {
			_ = s.cache.Set(ctx, key, data, s.ttl).Err()
		}
	}
	return sum, nil
}

// Export returns the account's invoices in the range as CSV rows.
func (s *Service) Export(ctx context.Context, userID string, from, to time.Time) ([]byte, error) {
	from, to = s.normalizeRange(from, to)
	snaps, err := s.source.ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return renderCSV(snaps)
}

// ExportFilename names the download after the day it was generated.
func (s *Service) ExportFilename() string {
	return fmt.Sprintf("invoices_%s.csv", s.now().Format("02-01-2006"))
}

// normalizeRange fills an absent upper bound; the store queries both
// bounds unconditionally and a zero "to" would match nothing.
func (s *Service) normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now().Add(24 * time.Hour)
	}
	return from, to
}

func summaryKey(userID string, from, to time.Time) string {
	return fmt.Sprintf("report:summary:%s:%d:%d", userID, from.Unix(), to.Truncate(time.Minute).Unix())
}
