package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botlink/botlink/internal/middleware"
	"github.com/botlink/botlink/internal/service"
)

// RedirectHandler handles inbound click requests.
type RedirectHandler struct {
	svc    *service.RedirectService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.RedirectService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		svc:    svc,
		logger: logger,
	}
}

// Click handles GET /{slug}: runs the redirect orchestration and either
// redirects immediately or serves the deep-link shim page.
func (h *RedirectHandler) Click(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.writeError(w, http.StatusNotFound, "SLUG_NOT_FOUND", "Campaign link not found")
		return
	}

	start := time.Now()

	res, err := h.svc.HandleClick(r.Context(), service.ClickInput{
		Slug:      slug,
		Query:     r.URL.Query(),
		ClientIP:  getClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		RequestID: middleware.GetRequestID(r.Context()),
	})
	duration := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugNotFound):
			h.logger.Info("redirect_unknown_slug",
				"slug", slug,
				"duration_ms", float64(duration.Microseconds())/1000,
			)
			h.writeError(w, http.StatusNotFound, "SLUG_NOT_FOUND", "Campaign link not found")
		default:
			h.logger.Error("redirect_error",
				"slug", slug,
				"error", err,
				"duration_ms", float64(duration.Microseconds())/1000,
			)
			h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	h.logger.Info("redirect_success",
		"slug", slug,
		"attributed", res.Attributed,
		"shim", res.ShimPage,
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	// Set security headers
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")

	if res.ShimPage {
		h.renderShim(w, res.Destination)
		return
	}

	http.Redirect(w, r, res.Destination, http.StatusFound)
}

// writeError writes a JSON error response for click failures.
func (h *RedirectHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=0")

	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
