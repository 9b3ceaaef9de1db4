package store

import (
	"context"
	"sync"
	"time"

	"github.com/botlink/botlink/internal/model"
)

// DefaultClickLogCap bounds the in-memory click log; once full, the oldest
// entries are evicted first.
const DefaultClickLogCap = 1000

// MemoryStore is the ephemeral backend for tests and throwaway
// environments. Same contract as SQLiteStore, nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	codes    map[string]*model.CodeMapping
	clicks   []*model.ClickLogEntry // append order, oldest first
	clickCap int
}

// NewMemory creates a MemoryStore with the default click log capacity.
func NewMemory() *MemoryStore {
	return NewMemoryWithCap(DefaultClickLogCap)
}

// NewMemoryWithCap creates a MemoryStore with an explicit click log capacity.
func NewMemoryWithCap(clickCap int) *MemoryStore {
	if clickCap < 1 {
		clickCap = DefaultClickLogCap
	}
	return &MemoryStore{
		codes:    make(map[string]*model.CodeMapping),
		clickCap: clickCap,
	}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close drops all state.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = make(map[string]*model.CodeMapping)
	s.clicks = nil
	return nil
}

// StoreCode persists a deep copy of the mapping.
func (s *MemoryStore) StoreCode(ctx context.Context, m *model.CodeMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[m.Code] = m.Clone()
	return nil
}

// GetCode returns a deep copy of the mapping, or ErrNotFound.
func (s *MemoryStore) GetCode(ctx context.Context, code string) (*model.CodeMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

// MarkResolved sets the resolved flag; resolvedAt is kept from the first call.
func (s *MemoryStore) MarkResolved(ctx context.Context, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.codes[code]
	if !ok {
		return ErrNotFound
	}
	m.Resolved = true
	if m.ResolvedAt == nil {
		t := at
		m.ResolvedAt = &t
	}
	return nil
}

// DeleteCode removes a mapping. Absent codes are a no-op.
func (s *MemoryStore) DeleteCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, code)
	return nil
}

// LogClick appends a deep copy, evicting the oldest entry at capacity.
func (s *MemoryStore) LogClick(ctx context.Context, e *model.ClickLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clicks) >= s.clickCap {
		drop := len(s.clicks) - s.clickCap + 1
		s.clicks = append(s.clicks[:0], s.clicks[drop:]...)
	}
	s.clicks = append(s.clicks, e.Clone())
	return nil
}

// GetClickLogs returns up to limit deep-copied entries for a slug,
// most recent first. Non-positive limits return nothing.
func (s *MemoryStore) GetClickLogs(ctx context.Context, slug string, limit int) ([]*model.ClickLogEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*model.ClickLogEntry
	for i := len(s.clicks) - 1; i >= 0 && len(entries) < limit; i-- {
		if s.clicks[i].Slug == slug {
			entries = append(entries, s.clicks[i].Clone())
		}
	}
	return entries, nil
}
