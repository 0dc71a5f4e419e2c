package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/retry"
)

var errStore = errors.New("store unavailable")

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 1.5}
}

type stubHistory struct {
	mu       sync.Mutex
	failures int
	created  []*domain.GameHistory
	topCalls int
	top      []*domain.LeaderboardEntry
}

func (h *stubHistory) Create(ctx context.Context, gh *domain.GameHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errStore
	}
	h.created = append(h.created, gh)
	return nil
}

func (h *stubHistory) TopByMode(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.topCalls++
	if h.failures > 0 {
		h.failures--
		return nil, errStore
	}
	return h.top, nil
}

func (h *stubHistory) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.GameHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*domain.GameHistory
	for _, gh := range h.created {
		if gh.UserID != nil && *gh.UserID == userID && len(out) < limit {
			out = append(out, gh)
		}
	}
	return out, nil
}

func (h *stubHistory) GetUserStats(ctx context.Context, userID int64) (*repository.UserStats, error) {
	return &repository.UserStats{UserID: userID}, nil
}

type stubCache struct {
	entries     map[string][]*domain.LeaderboardEntry
	invalidated []domain.GameMode
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]*domain.LeaderboardEntry)}
}

func (c *stubCache) Get(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, bool) {
	e, ok := c.entries[string(mode)]
	return e, ok
}

func (c *stubCache) Set(ctx context.Context, mode domain.GameMode, limit int, entries []*domain.LeaderboardEntry) {
	c.entries[string(mode)] = entries
}

func (c *stubCache) Invalidate(ctx context.Context, mode domain.GameMode) {
	delete(c.entries, string(mode))
	c.invalidated = append(c.invalidated, mode)
}

type stubRecorder struct {
	mu      sync.Mutex
	records []SubmitRecord
}

func (r *stubRecorder) Submit(ctx context.Context, rec SubmitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *stubRecorder) all() []SubmitRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SubmitRecord(nil), r.records...)
}

type stubAudit struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (a *stubAudit) Create(ctx context.Context, log *domain.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

func (a *stubAudit) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (a *stubAudit) GetBySession(ctx context.Context, sessionID string) ([]*domain.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range a.logs {
		if l.Details["session_id"] == sessionID {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubUsers map[int64]*domain.User

func (u stubUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}
