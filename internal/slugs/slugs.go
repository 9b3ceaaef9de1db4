// Package slugs loads and resolves campaign redirect rules.
//
// A slug maps a URL path segment to one Telegram destination. The rule set
// is loaded once at startup from a JSON file and is immutable afterwards.
package slugs

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// DestinationType selects how the outbound URL is built and whether a
// click produces an attribution code.
type DestinationType string

// Destination types. Only Bot destinations carry attribution codes;
// Public and Invite destinations redirect with no stored mapping.
const (
	TypeBot    DestinationType = "bot"
	TypePublic DestinationType = "public"
	TypeInvite DestinationType = "invite"
)

// Mode selects the click response: an immediate redirect or the shim page
// that attempts an app deep link first.
type Mode string

// Modes.
const (
	ModeRedirect Mode = "redirect"
	ModeShim     Mode = "shim"
)

// Destination is one validated redirect rule.
type Destination struct {
	Type       DestinationType `json:"type"`
	Identifier string          `json:"identifier"`            // bot/channel username or invite hash
	Mode       Mode            `json:"mode,omitempty"`        // defaults to redirect
	StartParam string          `json:"start_param,omitempty"` // fallback bot start parameter
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_+-]{1,64}$`)

// Config holds the loaded slug rule set.
type Config struct {
	rules map[string]Destination
}

// Load reads and validates the rule file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slug config: %w", err)
	}

	var rules map[string]Destination
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse slug config: %w", err)
	}

	return New(rules)
}

// New validates an in-memory rule set. Mostly used by tests.
func New(rules map[string]Destination) (*Config, error) {
	validated := make(map[string]Destination, len(rules))
	for slug, d := range rules {
		if slug == "" {
			return nil, fmt.Errorf("slug config: empty slug")
		}
		switch d.Type {
		case TypeBot, TypePublic, TypeInvite:
		default:
			return nil, fmt.Errorf("slug %q: unknown destination type %q", slug, d.Type)
		}
		if !identifierPattern.MatchString(d.Identifier) {
			return nil, fmt.Errorf("slug %q: invalid identifier %q", slug, d.Identifier)
		}
		switch d.Mode {
		case ModeRedirect, ModeShim:
		case "":
			d.Mode = ModeRedirect
		default:
			return nil, fmt.Errorf("slug %q: unknown mode %q", slug, d.Mode)
		}
		validated[slug] = d
	}
	return &Config{rules: validated}, nil
}

// Lookup returns the destination for a slug.
func (c *Config) Lookup(slug string) (Destination, bool) {
	d, ok := c.rules[slug]
	return d, ok
}

// Len returns the number of configured slugs.
func (c *Config) Len() int {
	return len(c.rules)
}
