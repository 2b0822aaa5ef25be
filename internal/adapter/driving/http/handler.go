// Package httphandler is the HTTP driving adapter serving the health and
// status API of the account loop.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

const (
	healthPath = "/api/v1/health"

	defaultPassLimit = 20
	maxPassLimit     = 200
)

// StatusProvider exposes the account loop state. *application.FarmService
// satisfies it.
type StatusProvider interface {
	Status() model.FarmStatus
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	status  StatusProvider
	journal driven.JournalStore // nil when journaling is disabled.
	logger  *slog.Logger
}

// NewHandler creates a Handler. journal may be nil.
func NewHandler(status StatusProvider, journal driven.JournalStore, logger *slog.Logger) *Handler {
	return &Handler{
		status:  status,
		journal: journal,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+healthPath, h.Health)
	mux.HandleFunc("GET /api/v1/status", h.Status)
	mux.HandleFunc("GET /api/v1/passes", h.ListPasses)
	mux.HandleFunc("GET /api/v1/passes/{id}/attempts", h.ListAttempts)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Status returns the current account loop snapshot.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toStatusResponse(h.status.Status()))
}

// ListPasses returns the most recent passes, newest first. The optional
// limit query parameter is capped at maxPassLimit.
func (h *Handler) ListPasses(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}

	limit := defaultPassLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxPassLimit)
	}

	passes, err := h.journal.ListPasses(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list passes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]PassResponse, 0, len(passes))
	for _, p := range passes {
		resp = append(resp, toPassResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListAttempts returns the completion attempts of one pass.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}

	passID := r.PathValue("id")

	attempts, err := h.journal.ListAttempts(r.Context(), passID)
	if errors.Is(err, driven.ErrPassNotFound) {
		writeError(w, http.StatusNotFound, "pass not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to list attempts", "pass_id", passID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, toAttemptResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}
