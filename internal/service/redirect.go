// Package service provides the click-redirect and code-resolution logic.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/botlink/botlink/internal/code"
	"github.com/botlink/botlink/internal/metrics"
	"github.com/botlink/botlink/internal/model"
	"github.com/botlink/botlink/internal/params"
	"github.com/botlink/botlink/internal/slugs"
	"github.com/botlink/botlink/internal/store"
)

// SlugResolver maps a slug to its destination rule.
type SlugResolver interface {
	Lookup(slug string) (slugs.Destination, bool)
}

// DeviceClassifier summarizes a User-Agent string.
type DeviceClassifier interface {
	Classify(ua string) model.DeviceInfo
}

// IPHasher produces privacy-safe hashes of client IPs.
type IPHasher interface {
	Hash(ip string) string
}

// RedirectService orchestrates one inbound click: code issuance for bot
// destinations, attribution persistence, destination computation and
// click logging.
type RedirectService struct {
	store   store.Store
	codec   *code.Codec
	slugs   SlugResolver
	devices DeviceClassifier
	ips     IPHasher
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRedirectService creates a RedirectService.
func NewRedirectService(
	st store.Store,
	codec *code.Codec,
	resolver SlugResolver,
	devices DeviceClassifier,
	ips IPHasher,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *RedirectService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedirectService{
		store:   st,
		codec:   codec,
		slugs:   resolver,
		devices: devices,
		ips:     ips,
		logger:  logger,
		metrics: recorder,
	}
}

// ClickInput is the per-click context received from the routing layer.
type ClickInput struct {
	Slug      string
	Query     url.Values
	ClientIP  string
	UserAgent string
	RequestID string
}

// ClickResult is the terminal outcome of one click.
type ClickResult struct {
	Destination string
	Code        string // empty for public/invite destinations
	Attributed  bool   // false when the mapping write failed or no code was issued
	ShimPage    bool   // render the deep-link hand-off page instead of redirecting
}

// HandleClick runs the per-click state machine. Store failures while
// writing attribution or the click log are non-fatal: the redirect is
// delivered regardless and the loss is logged as a warning.
func (s *RedirectService) HandleClick(ctx context.Context, in ClickInput) (*ClickResult, error) {
	start := time.Now()

	dest, ok := s.slugs.Lookup(in.Slug)
	if !ok {
		return nil, ErrSlugNotFound
	}

	utm, extra := params.Extract(in.Query)
	ipHash := s.ips.Hash(in.ClientIP)
	now := time.Now().UTC()

	var codeStr string
	attributed := false

	// Only bot destinations have a later retrieval step, so only they
	// get a code and a stored mapping.
	if dest.Type == slugs.TypeBot {
		generated, err := s.codec.Generate()
		if err != nil {
			s.logger.Warn("code generation failed, redirecting without attribution",
				"slug", in.Slug,
				"request_id", in.RequestID,
				"error", err,
			)
			s.metrics.IncAttributionFailure()
		} else {
			codeStr = generated
			s.metrics.IncCodeIssued()

			mapping := &model.CodeMapping{
				Code: codeStr,
				Attribution: model.ClickAttribution{
					Slug:      in.Slug,
					Timestamp: now,
					UTM:       utm,
					Extra:     extra,
					IPHash:    ipHash,
					UserAgent: in.UserAgent,
					Device:    s.devices.Classify(in.UserAgent),
					RequestID: in.RequestID,
				},
				BotUsername: dest.Identifier,
				CreatedAt:   now,
			}

			if err := s.store.StoreCode(ctx, mapping); err != nil {
				// Redirect availability outranks attribution completeness.
				s.logger.Warn("storing code mapping failed, attribution lost",
					"slug", in.Slug,
					"request_id", in.RequestID,
					"error", err,
				)
				s.metrics.IncAttributionFailure()
			} else {
				attributed = true
			}
		}
	}

	target := DestinationURL(dest, codeStr)

	entry := &model.ClickLogEntry{
		ID:        ulid.Make().String(),
		RequestID: in.RequestID,
		Slug:      in.Slug,
		Timestamp: now,
		IPHash:    ipHash,
		UserAgent: in.UserAgent,
		Target:    target,
		Code:      codeStr,
		Params:    params.Flatten(in.Query),
	}
	if err := s.store.LogClick(ctx, entry); err != nil {
		s.logger.Warn("click log write failed",
			"slug", in.Slug,
			"request_id", in.RequestID,
			"error", err,
		)
		s.metrics.IncClickLogFailure()
	}

	s.metrics.IncRedirect()
	s.metrics.ObserveRedirectDuration(time.Since(start))

	return &ClickResult{
		Destination: target,
		Code:        codeStr,
		Attributed:  attributed,
		ShimPage:    dest.Mode == slugs.ModeShim,
	}, nil
}

// RecentClicks returns up to limit click log entries for a slug,
// most recent first.
func (s *RedirectService) RecentClicks(ctx context.Context, slug string, limit int) ([]*model.ClickLogEntry, error) {
	if _, ok := s.slugs.Lookup(slug); !ok {
		return nil, ErrSlugNotFound
	}
	return s.store.GetClickLogs(ctx, slug, limit)
}

// DestinationURL deterministically computes the outbound URL from the
// destination rule and an optional attribution code. Pure function.
func DestinationURL(d slugs.Destination, codeStr string) string {
	switch d.Type {
	case slugs.TypeInvite:
		return "https://t.me/+" + strings.TrimPrefix(d.Identifier, "+")
	case slugs.TypeBot:
		start := codeStr
		if start == "" {
			start = d.StartParam
		}
		if start == "" {
			return "https://t.me/" + d.Identifier
		}
		return "https://t.me/" + d.Identifier + "?start=" + url.QueryEscape(start)
	default:
		return "https://t.me/" + d.Identifier
	}
}
