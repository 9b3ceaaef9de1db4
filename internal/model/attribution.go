// Package model defines domain entities for the application.
package model

import "time"

// UTMParams is the fixed set of UTM query parameters captured per click.
// Every field is optional; absent parameters stay empty.
type UTMParams struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Content  string `json:"utm_content,omitempty"`
	Term     string `json:"utm_term,omitempty"`
}

// IsZero reports whether no UTM parameter was present.
func (u UTMParams) IsZero() bool {
	return u == UTMParams{}
}

// DeviceInfo is the classification summary derived from the User-Agent.
type DeviceInfo struct {
	Type      string `json:"type"` // mobile, tablet, desktop, bot, unknown
	OS        string `json:"os,omitempty"`
	Browser   string `json:"browser,omitempty"`
	LikelyApp bool   `json:"likely_app"` // likely able to open the messenger app directly
}

// ClickAttribution is the captured marketing/device context for one click.
// Immutable once created; owned exclusively by its CodeMapping.
type ClickAttribution struct {
	Slug      string            `json:"slug"`
	Timestamp time.Time         `json:"timestamp"`
	UTM       UTMParams         `json:"utm"`
	Extra     map[string]string `json:"extra,omitempty"` // sanitized non-UTM query params
	IPHash    string            `json:"ip_hash"`         // salted one-way hash, never the raw IP
	UserAgent string            `json:"user_agent"`
	Device    DeviceInfo        `json:"device"`
	RequestID string            `json:"request_id"`
}

// Clone returns a deep copy. Store and cache reads hand out clones so
// callers cannot mutate retained state through returned references.
func (a *ClickAttribution) Clone() *ClickAttribution {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Extra != nil {
		cp.Extra = make(map[string]string, len(a.Extra))
		for k, v := range a.Extra {
			cp.Extra[k] = v
		}
	}
	return &cp
}

// CodeMapping is the stored unit keyed by an attribution code.
// Lifecycle: unresolved -> resolved [-> deleted]; transitions are monotonic.
type CodeMapping struct {
	Code        string           `json:"code"`
	Attribution ClickAttribution `json:"attribution"`
	BotUsername string           `json:"bot_username"`
	CreatedAt   time.Time        `json:"created_at"`
	Resolved    bool             `json:"resolved"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
}

// Clone returns a deep copy of the mapping.
func (m *CodeMapping) Clone() *CodeMapping {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Attribution = *m.Attribution.Clone()
	if m.ResolvedAt != nil {
		at := *m.ResolvedAt
		cp.ResolvedAt = &at
	}
	return &cp
}
