// Package store provides durable keyed storage for code mappings and the
// append-only click log, polymorphic over backend.
//
// The backend set is sealed: SQLite (file-backed, durable) and Memory
// (ephemeral, for tests and throwaway environments). The variant is chosen
// once at startup by configuration and never switched at runtime.
//
// Backends return deep copies on every read so callers cannot mutate
// stored state through returned references. Backend errors are surfaced
// raw; the caller decides whether a failure is fatal to the request.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/botlink/botlink/internal/model"
)

// ErrNotFound is returned when no mapping exists for a code.
var ErrNotFound = errors.New("code mapping not found")

// Store is the capability set shared by all backends.
type Store interface {
	// Ping checks backend availability.
	Ping(ctx context.Context) error

	// StoreCode persists a new code mapping.
	StoreCode(ctx context.Context, m *model.CodeMapping) error

	// GetCode returns the mapping for a code, or ErrNotFound.
	GetCode(ctx context.Context, code string) (*model.CodeMapping, error)

	// MarkResolved sets resolved=true and, if not already set, resolvedAt.
	// Idempotent: repeated calls never move an existing resolvedAt.
	MarkResolved(ctx context.Context, code string, at time.Time) error

	// DeleteCode removes a mapping. Deleting an absent code is not an error.
	DeleteCode(ctx context.Context, code string) error

	// LogClick appends one entry to the click log.
	LogClick(ctx context.Context, e *model.ClickLogEntry) error

	// GetClickLogs returns up to limit entries for a slug, most recent
	// first. Non-positive limits return nothing.
	GetClickLogs(ctx context.Context, slug string, limit int) ([]*model.ClickLogEntry, error)

	// Close releases backend resources.
	Close() error
}
