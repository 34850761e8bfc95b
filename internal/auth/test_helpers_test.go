package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the service and handler tests.
type memStore struct {
	mu           sync.Mutex
	usersByEmail map[string]UserRecord
	usersByID    map[string]UserRecord
	sessions     map[string]SessionRecord
	resets       map[string]ResetRecord
}

func newMemStore() *memStore {
	return &memStore{
		usersByEmail: make(map[string]UserRecord),
		usersByID:    make(map[string]UserRecord),
		sessions:     make(map[string]SessionRecord),
		resets:       make(map[string]ResetRecord),
	}
}

func (m *memStore) seedUser(name, email, passwordHash string) UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	u := UserRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.usersByEmail[email] = u
	m.usersByID[u.ID] = u
	return u
}

func (m *memStore) CreateUser(_ context.Context, name, email, passwordHash string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.usersByEmail[email]; exists {
		return UserRecord{}, ErrEmailTaken
	}
	now := time.Now()
	u := UserRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.usersByEmail[email] = u
	m.usersByID[u.ID] = u
	return u, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByEmail[email]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return u, nil
}

func (m *memStore) UserByID(_ context.Context, id string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return u, nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	m.usersByID[userID] = u
	m.usersByEmail[u.Email] = u
	return nil
}

func (m *memStore) CreateSession(_ context.Context, userID, tokenHash, userAgent, ip string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[tokenHash] = SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memStore) SessionByTokenHash(_ context.Context, tokenHash string) (SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[tokenHash]
	if !ok {
		return SessionRecord{}, ErrNotFound
	}
	return sess, nil
}

func (m *memStore) RotateSession(_ context.Context, sessionID, newTokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, sess := range m.sessions {
		if sess.ID == sessionID {
			delete(m.sessions, hash)
			sess.TokenHash = newTokenHash
			sess.ExpiresAt = expiresAt
			m.sessions[newTokenHash] = sess
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenHash)
	return nil
}

func (m *memStore) DeleteSessionsByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, sess := range m.sessions {
		if sess.UserID == userID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

func (m *memStore) CreatePasswordReset(_ context.Context, userID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[token] = ResetRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memStore) PasswordResetByToken(_ context.Context, token string) (ResetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.resets[token]
	if !ok {
		return ResetRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *memStore) MarkResetUsed(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.resets[token]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	rec.UsedAt = &now
	m.resets[token] = rec
	return nil
}

func (m *memStore) DeleteResetsByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, rec := range m.resets {
		if rec.UserID == userID {
			delete(m.resets, token)
		}
	}
	return nil
}

func (m *memStore) hasSession(tokenHash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[tokenHash]
	return ok
}

func (m *memStore) firstResetToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token := range m.resets {
		return token
	}
	return ""
}

// memEmail captures outgoing mail for assertions.
type memEmail struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *memEmail) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *memEmail) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func newTestService(t interface{ Fatalf(string, ...any) }, store Store, email *memEmail) *Service {
	cfg := Config{
		Store:           store,
		Secret:          "test-secret",
		PublicBaseURL:   "https://billing.example.com",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		ResetTokenTTL:   time.Hour,
		Issuer:          "backend-billing",
		Audience:        "billing-frontend",
	}
	if email != nil {
		cfg.Email = email
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
