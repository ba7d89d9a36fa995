package memory

import (
	"context"
	"sync"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

type idempotencyEntry struct {
	req       idempotency.Request
	replay    *idempotency.Replay
	updatedAt time.Time
	expiresAt time.Time
}

// IdempotencyStore keeps idempotency keys in process memory.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*idempotencyEntry
}

// NewIdempotencyStore creates an empty key store.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*idempotencyEntry),
	}
}

// Acquire implements idempotency.Store.
func (s *IdempotencyStore) Acquire(_ context.Context, req idempotency.Request) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[req.Key]
	if !ok || now.After(e.expiresAt) {
		s.entries[req.Key] = &idempotencyEntry{req: req, updatedAt: now, expiresAt: now.Add(s.ttl)}
		return nil, nil
	}

	if e.req != req {
		return nil, apperror.NewIdempotencyMismatch(req.Key).WithDetail("operation", e.req.Operation)
	}
	if e.replay != nil {
		replay := *e.replay
		return &replay, nil
	}
	if now.Sub(e.updatedAt) > idempotency.StaleAfter {
		e.updatedAt = now
		return nil, nil
	}
	return nil, apperror.NewIdempotencyConflict(req.Key)
}

// Complete implements idempotency.Store.
func (s *IdempotencyStore) Complete(_ context.Context, key string, replay idempotency.Replay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		r := idempotency.NormalizeReplay(replay)
		e.replay = &r
		e.updatedAt = s.now()
	}
	return nil
}

// Release implements idempotency.Store.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.replay == nil {
		delete(s.entries, key)
	}
	return nil
}
