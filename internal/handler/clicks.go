package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botlink/botlink/internal/model"
	"github.com/botlink/botlink/internal/service"
)

const (
	defaultClickLimit = 50
	maxClickLimit     = 500
)

// ClicksHandler serves the click-log API.
type ClicksHandler struct {
	svc    *service.RedirectService
	logger *slog.Logger
}

// NewClicksHandler creates a new ClicksHandler.
func NewClicksHandler(svc *service.RedirectService, logger *slog.Logger) *ClicksHandler {
	return &ClicksHandler{
		svc:    svc,
		logger: logger,
	}
}

// clicksResponse is the JSON shape of the recent-clicks listing.
type clicksResponse struct {
	Slug   string       `json:"slug"`
	Count  int          `json:"count"`
	Clicks []clickEntry `json:"clicks"`
}

type clickEntry struct {
	ID        string            `json:"id"`
	RequestID string            `json:"request_id"`
	Timestamp time.Time         `json:"timestamp"`
	IPHash    string            `json:"ip_hash"`
	UserAgent string            `json:"user_agent"`
	Target    string            `json:"target"`
	Code      string            `json:"code,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// Recent handles GET /api/v1/slugs/{slug}/clicks?limit=N, returning the
// most recent click log entries for a slug.
func (h *ClicksHandler) Recent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	limit := defaultClickLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "limit must be a positive integer", Code: "INVALID_LIMIT",
			})
			return
		}
		limit = parsed
	}
	if limit > maxClickLimit {
		limit = maxClickLimit
	}

	entries, err := h.svc.RecentClicks(r.Context(), slug, limit)
	if err != nil {
		if errors.Is(err, service.ErrSlugNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error: "Campaign link not found", Code: "SLUG_NOT_FOUND",
			})
			return
		}
		h.logger.Error("click_log_query_error", "slug", slug, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "An internal error occurred", Code: "INTERNAL_ERROR",
		})
		return
	}

	resp := clicksResponse{
		Slug:   slug,
		Count:  len(entries),
		Clicks: make([]clickEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Clicks = append(resp.Clicks, toClickEntry(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toClickEntry(e *model.ClickLogEntry) clickEntry {
	return clickEntry{
		ID:        e.ID,
		RequestID: e.RequestID,
		Timestamp: e.Timestamp,
		IPHash:    e.IPHash,
		UserAgent: e.UserAgent,
		Target:    e.Target,
		Code:      e.Code,
		Params:    e.Params,
	}
}
