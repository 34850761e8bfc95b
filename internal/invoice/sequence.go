package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-billing/internal/lock"
)

// NumberSource exposes the highest persisted invoice number, used to
// seed the sequence for accounts that predate it.
type NumberSource interface {
	HighestNumber(ctx context.Context, userID string) (string, error)
}

// Sequence allocates invoice numbers. With Redis present, a per-account
// counter (INCR) makes allocation atomic across instances; the counter
// is seeded from the highest stored number under a distributed lock.
// Without Redis it falls back to deriving from the store on every call,
// which is only safe for a single writer but keeps tests hermetic.
type Sequence struct {
	R       *redis.Client
	Store   NumberSource
	Locker  lock.Locker
	LockTTL time.Duration
}

func seqKey(userID string) string  { return "invoice:seq:" + userID }
func seedKey(userID string) string { return "invoice:seq:seed:" + userID }

// Next reserves and returns the next invoice number for the account.
func (s *Sequence) Next(ctx context.Context, userID string) (string, error) {
	if s.R == nil {
		highest, err := s.Store.HighestNumber(ctx, userID)
		if err != nil {
			return "", err
		}
		return NextNumber(highest), nil
	}
	if err := s.ensureSeeded(ctx, userID); err != nil {
		return "", err
	}
	n, err := s.R.Incr(ctx, seqKey(userID)).Result()
	if err != nil {
		return "", fmt.Errorf("increment sequence: %w", err)
	}
	return FormatNumber(int(n)), nil
}

// Peek returns the number the next allocation would produce without
// reserving it.
func (s *Sequence) Peek(ctx context.Context, userID string) (string, error) {
	if s.R == nil {
		highest, err := s.Store.HighestNumber(ctx, userID)
		if err != nil {
			return "", err
		}
		return NextNumber(highest), nil
	}
	if err := s.ensureSeeded(ctx, userID); err != nil {
		return "", err
	}
	n, err := s.R.Get(ctx, seqKey(userID)).Int()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("read sequence: %w", err)
	}
	return FormatNumber(n + 1), nil
}

// ensureSeeded initialises the counter from the store exactly once per
// account. The lock prevents two instances from racing the seed; SetNX
// makes the seed itself idempotent either way.
func (s *Sequence) ensureSeeded(ctx context.Context, userID string) error {
	exists, err := s.R.Exists(ctx, seqKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("check sequence: %w", err)
	}
	if exists > 0 {
		return nil
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return s.Locker.WithLock(ctx, seedKey(userID), ttl, func(ctx context.Context) error {
		highest, err := s.Store.HighestNumber(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.R.SetNX(ctx, seqKey(userID), ParseNumber(highest), 0).Err(); err != nil {
			return fmt.Errorf("seed sequence: %w", err)
		}
		return nil
	})
}
