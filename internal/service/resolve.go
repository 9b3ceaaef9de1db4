package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/botlink/botlink/internal/cache"
	"github.com/botlink/botlink/internal/code"
	"github.com/botlink/botlink/internal/metrics"
	"github.com/botlink/botlink/internal/model"
	"github.com/botlink/botlink/internal/store"
)

// ResolveService satisfies code lookups from the downstream bot.
//
// Lookups run cache-aside: the resolution cache is checked first, misses
// fall through to the store and repopulate the cache. The store stays the
// source of truth; the cache entry is rewritten only after a successful
// store mutation, so a cache hit is never staler than the last resolution
// state this process observed.
type ResolveService struct {
	store   store.Store
	cache   *cache.Resolution
	codec   *code.Codec
	oneTime bool
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewResolveService creates a ResolveService. When oneTime is set, codes
// are deleted from cache and store immediately after their first
// successful resolution.
func NewResolveService(
	st store.Store,
	c *cache.Resolution,
	codec *code.Codec,
	oneTime bool,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *ResolveService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ResolveService{
		store:   st,
		cache:   c,
		codec:   codec,
		oneTime: oneTime,
		logger:  logger,
		metrics: recorder,
	}
}

// CodeStatus is the non-consuming existence/state view of a code.
type CodeStatus struct {
	Resolved    bool
	BotUsername string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// Resolve validates a code, marks it resolved and returns its mapping.
// The resolved transition is monotonic; resolving an already-resolved
// code returns the mapping unchanged. With the one-time policy the
// mapping is deleted after resolution, so a second call finds nothing.
func (s *ResolveService) Resolve(ctx context.Context, codeStr string) (*model.CodeMapping, error) {
	m, err := s.lookup(ctx, codeStr)
	if err != nil {
		return nil, err
	}

	if !m.Resolved {
		now := time.Now().UTC()
		// Write-through before updating any local state: on store error
		// the call fails and the cache keeps the unresolved entry.
		if err := s.store.MarkResolved(ctx, codeStr, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Deleted between lookup and resolve; treat as consumed.
				s.cache.Delete(codeStr)
				return nil, ErrCodeNotFound
			}
			return nil, fmt.Errorf("mark resolved: %w", err)
		}
		m.Resolved = true
		m.ResolvedAt = &now
		s.cache.Set(codeStr, m)
		s.metrics.IncCodeResolved()
	}

	if s.oneTime {
		// Consume regardless of which call performed the transition.
		s.cache.Delete(codeStr)
		if err := s.store.DeleteCode(ctx, codeStr); err != nil {
			// The payload is already in hand; deletion failure only delays
			// consumption until the store's retention kicks in.
			s.logger.Warn("one-time code deletion failed",
				"code", codeStr,
				"error", err,
			)
		}
	}

	return m, nil
}

// Status performs the validation and lookup steps of Resolve without the
// resolved transition or one-time deletion, for existence checks that
// must not consume the code.
func (s *ResolveService) Status(ctx context.Context, codeStr string) (*CodeStatus, error) {
	m, err := s.lookup(ctx, codeStr)
	if err != nil {
		return nil, err
	}
	return &CodeStatus{
		Resolved:    m.Resolved,
		BotUsername: m.BotUsername,
		CreatedAt:   m.CreatedAt,
		ResolvedAt:  m.ResolvedAt,
	}, nil
}

// lookup rejects malformed and forged codes before any store work, then
// satisfies the read from the cache or the store.
func (s *ResolveService) lookup(ctx context.Context, codeStr string) (*model.CodeMapping, error) {
	if !s.codec.IsWellFormed(codeStr) {
		return nil, ErrCodeFormat
	}
	if !s.codec.Verify(codeStr) {
		// Well-formed but failing the signature may indicate probing.
		s.logger.Warn("resolve_tampered", "code", codeStr)
		s.metrics.IncTamperRejected()
		return nil, ErrCodeSignature
	}

	if m, ok := s.cache.Get(codeStr); ok {
		s.metrics.IncResolveCacheHit()
		return m, nil
	}
	s.metrics.IncResolveCacheMiss()

	m, err := s.store.GetCode(ctx, codeStr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	s.cache.Set(codeStr, m)

	return m, nil
}
