// Package params extracts and sanitizes marketing query parameters.
package params

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/botlink/botlink/internal/model"
)

const (
	// MaxValueLen caps individual parameter values.
	MaxValueLen = 256
	// MaxExtraParams caps the number of non-UTM parameters kept.
	MaxExtraParams = 25
)

// safeKeyPattern limits extra-parameter keys to a conservative charset.
var safeKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Extract splits query parameters into the fixed 5-key UTM subset and a
// sanitized map of the remaining parameters. The two sets are disjoint;
// unsafe keys and oversized values are dropped, never truncated.
func Extract(query url.Values) (model.UTMParams, map[string]string) {
	var utm model.UTMParams
	var extra map[string]string

	for key, values := range query {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]
		if len(value) > MaxValueLen {
			continue
		}

		switch key {
		case "utm_source":
			utm.Source = value
		case "utm_medium":
			utm.Medium = value
		case "utm_campaign":
			utm.Campaign = value
		case "utm_content":
			utm.Content = value
		case "utm_term":
			utm.Term = value
		default:
			if !safeKeyPattern.MatchString(key) {
				continue
			}
			if len(extra) >= MaxExtraParams {
				continue
			}
			if extra == nil {
				extra = make(map[string]string)
			}
			extra[key] = value
		}
	}

	return utm, extra
}

// Flatten returns the full received query set as a single-valued map for
// the click log, which records what was actually received: empty values
// are kept and repeated values are joined with commas.
func Flatten(query url.Values) map[string]string {
	if len(query) == 0 {
		return nil
	}
	flat := make(map[string]string, len(query))
	for key, values := range query {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}
