package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("auth: not found")
	ErrEmailTaken = errors.New("auth: email already registered")
)

// UserRecord is the persisted shape of an account.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRecord is a refresh token session. TokenHash stores a SHA-256
// digest, never the raw token.
type SessionRecord struct {
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ResetRecord is a pending password reset token.
type ResetRecord struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Store persists accounts, sessions, and password reset tokens.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (UserRecord, error)
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	UserByID(ctx context.Context, id string) (UserRecord, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	CreateSession(ctx context.Context, userID, tokenHash, userAgent, ip string, expiresAt time.Time) error
	SessionByTokenHash(ctx context.Context, tokenHash string) (SessionRecord, error)
	RotateSession(ctx context.Context, sessionID, newTokenHash string, expiresAt time.Time) error
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error

	CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error
	PasswordResetByToken(ctx context.Context, token string) (ResetRecord, error)
	MarkResetUsed(ctx context.Context, token string) error
	DeleteResetsByUser(ctx context.Context, userID string) error
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) CreateUser(ctx context.Context, name, email, passwordHash string) (UserRecord, error) {
	const q = `INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id::text, name, email, password_hash, created_at, updated_at`
	var u UserRecord
	err := s.Pool.QueryRow(ctx, q, name, email, passwordHash).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PGStore) UserByEmail(ctx context.Context, email string) (UserRecord, error) {
	const q = `SELECT id::text, name, email, password_hash, created_at, updated_at
FROM users WHERE email = $1`
	return s.scanUser(s.Pool.QueryRow(ctx, q, email))
}

func (s *PGStore) UserByID(ctx context.Context, id string) (UserRecord, error) {
	const q = `SELECT id::text, name, email, password_hash, created_at, updated_at
FROM users WHERE id = $1::uuid`
	return s.scanUser(s.Pool.QueryRow(ctx, q, id))
}

func (s *PGStore) scanUser(row pgx.Row) (UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRecord{}, ErrNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *PGStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1::uuid`
	tag, err := s.Pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) CreateSession(ctx context.Context, userID, tokenHash, userAgent, ip string, expiresAt time.Time) error {
	const q = `INSERT INTO sessions (user_id, refresh_token_hash, user_agent, ip, expires_at)
VALUES ($1::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`
	if _, err := s.Pool.Exec(ctx, q, userID, tokenHash, userAgent, ip, expiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PGStore) SessionByTokenHash(ctx context.Context, tokenHash string) (SessionRecord, error) {
	const q = `SELECT id::text, user_id::text, refresh_token_hash,
COALESCE(user_agent, ''), COALESCE(ip, ''), expires_at, created_at
FROM sessions WHERE refresh_token_hash = $1`
	var sess SessionRecord
	err := s.Pool.QueryRow(ctx, q, tokenHash).
		Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.UserAgent, &sess.IP, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *PGStore) RotateSession(ctx context.Context, sessionID, newTokenHash string, expiresAt time.Time) error {
	const q = `UPDATE sessions SET refresh_token_hash = $2, expires_at = $3 WHERE id = $1::uuid`
	tag, err := s.Pool.Exec(ctx, q, sessionID, newTokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	const q = `DELETE FROM sessions WHERE refresh_token_hash = $1`
	if _, err := s.Pool.Exec(ctx, q, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM sessions WHERE user_id = $1::uuid`
	if _, err := s.Pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (s *PGStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	const q = `INSERT INTO password_resets (user_id, token, expires_at)
VALUES ($1::uuid, $2, $3)`
	if _, err := s.Pool.Exec(ctx, q, userID, token, expiresAt); err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PGStore) PasswordResetByToken(ctx context.Context, token string) (ResetRecord, error) {
	const q = `SELECT id::text, user_id::text, token, expires_at, used_at, created_at
FROM password_resets WHERE token = $1`
	var rec ResetRecord
	err := s.Pool.QueryRow(ctx, q, token).
		Scan(&rec.ID, &rec.UserID, &rec.Token, &rec.ExpiresAt, &rec.UsedAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ResetRecord{}, ErrNotFound
	}
	if err != nil {
		return ResetRecord{}, fmt.Errorf("get password reset: %w", err)
	}
	return rec, nil
}

func (s *PGStore) MarkResetUsed(ctx context.Context, token string) error {
	const q = `UPDATE password_resets SET used_at = now() WHERE token = $1 AND used_at IS NULL`
	tag, err := s.Pool.Exec(ctx, q, token)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteResetsByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM password_resets WHERE user_id = $1::uuid`
	if _, err := s.Pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("delete password resets: %w", err)
	}
	return nil
}
