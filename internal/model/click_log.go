package model

import "time"

// ClickLogEntry is one append-only record of an inbound click.
// Written for every click regardless of destination type; never mutated
// or deleted by the application, retention is a store concern.
type ClickLogEntry struct {
	ID        string            `json:"id"` // ULID, time-sortable
	RequestID string            `json:"request_id"`
	Slug      string            `json:"slug"`
	Timestamp time.Time         `json:"timestamp"`
	IPHash    string            `json:"ip_hash"`
	UserAgent string            `json:"user_agent"`
	Target    string            `json:"target"` // final redirect destination
	Code      string            `json:"code,omitempty"`
	Params    map[string]string `json:"params,omitempty"` // full received query set, repeated values comma-joined
}

// Clone returns a deep copy of the entry.
func (e *ClickLogEntry) Clone() *ClickLogEntry {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Params != nil {
		cp.Params = make(map[string]string, len(e.Params))
		for k, v := range e.Params {
			cp.Params[k] = v
		}
	}
	return &cp
}
