package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botlink/botlink/internal/model"
	"github.com/botlink/botlink/internal/service"
)

// ResolveHandler serves the bot-facing code API.
type ResolveHandler struct {
	svc    *service.ResolveService
	logger *slog.Logger
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(svc *service.ResolveService, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		svc:    svc,
		logger: logger,
	}
}

// errorResponse is the JSON error envelope for the API.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// resolveResponse is the JSON envelope for a successful resolution.
type resolveResponse struct {
	Success bool        `json:"success"`
	Data    resolveData `json:"data"`
}

// resolveData flattens the attribution payload for the bot.
type resolveData struct {
	Slug        string            `json:"slug"`
	Timestamp   time.Time         `json:"timestamp"`
	UTM         model.UTMParams   `json:"utm"`
	Extra       map[string]string `json:"extra,omitempty"`
	IPHash      string            `json:"ip_hash"`
	UserAgent   string            `json:"user_agent"`
	Device      model.DeviceInfo  `json:"device"`
	RequestID   string            `json:"request_id"`
	BotUsername string            `json:"bot_username"`
	CreatedAt   time.Time         `json:"created_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
}

// statusResponse is the JSON shape of the non-consuming status check.
type statusResponse struct {
	Exists      bool       `json:"exists"`
	Resolved    bool       `json:"resolved"`
	BotUsername string     `json:"bot_username,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Resolve handles POST /api/v1/codes/{code}/resolve: validates and
// consumes a code, returning its attribution payload.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	codeStr := chi.URLParam(r, "code")

	m, err := h.svc.Resolve(r.Context(), codeStr)
	if err != nil {
		h.writeResolveError(w, codeStr, err)
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		Success: true,
		Data: resolveData{
			Slug:        m.Attribution.Slug,
			Timestamp:   m.Attribution.Timestamp,
			UTM:         m.Attribution.UTM,
			Extra:       m.Attribution.Extra,
			IPHash:      m.Attribution.IPHash,
			UserAgent:   m.Attribution.UserAgent,
			Device:      m.Attribution.Device,
			RequestID:   m.Attribution.RequestID,
			BotUsername: m.BotUsername,
			CreatedAt:   m.CreatedAt,
			ResolvedAt:  m.ResolvedAt,
		},
	})
}

// Status handles GET /api/v1/codes/{code}: reports existence and resolved
// state without consuming the code.
func (h *ResolveHandler) Status(w http.ResponseWriter, r *http.Request) {
	codeStr := chi.URLParam(r, "code")

	status, err := h.svc.Status(r.Context(), codeStr)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			writeJSON(w, http.StatusNotFound, statusResponse{Exists: false})
			return
		}
		h.writeResolveError(w, codeStr, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Exists:      true,
		Resolved:    status.Resolved,
		BotUsername: status.BotUsername,
		CreatedAt:   &status.CreatedAt,
		ResolvedAt:  status.ResolvedAt,
	})
}

// writeResolveError maps service errors onto the API taxonomy.
func (h *ResolveHandler) writeResolveError(w http.ResponseWriter, codeStr string, err error) {
	switch {
	case errors.Is(err, service.ErrCodeFormat):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Code is malformed", Code: "CODE_MALFORMED",
		})
	case errors.Is(err, service.ErrCodeSignature):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Code is invalid", Code: "CODE_INVALID",
		})
	case errors.Is(err, service.ErrCodeNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "Code not found", Code: "CODE_NOT_FOUND",
		})
	default:
		h.logger.Error("resolve_error", "code", codeStr, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "An internal error occurred", Code: "INTERNAL_ERROR",
		})
	}
}
