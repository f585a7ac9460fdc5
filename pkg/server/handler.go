// Package server provides the HTTP API for the coaching chat service.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathwise/coachmem-go/pkg/coach"
	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/memory"
)

// fallbackMessage is the user-safe reply when the completion service fails.
const fallbackMessage = "I'm having trouble responding right now. Please try again in a moment."

// Handler serves the chat API.
type Handler struct {
	orch   *coach.Orchestrator
	mem    *memory.ConversationMemory
	logger *slog.Logger
}

// NewHandler creates a Handler with its dependencies.
func NewHandler(orch *coach.Orchestrator, mem *memory.ConversationMemory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orch:   orch,
		mem:    mem,
		logger: logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// errorWithDetails writes a JSON error response with a details field.
func errorWithDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, map[string]string{"error": message, "details": details})
}

// Chat handles POST /api/chat.
//
// Validation failures map to 400, upstream and unexpected failures to 500
// with a user-safe fallback message. Bookkeeping failures never fail the
// response; they surface only through the result flags.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req coach.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orch.Chat(r.Context(), &req)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// writeChatError maps orchestrator errors onto HTTP responses.
func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrMessageEmpty):
		Error(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, core.ErrMessageTooLong):
		Error(w, http.StatusBadRequest, "message is too long")
	case errors.Is(err, core.ErrProfileInvalid):
		Error(w, http.StatusBadRequest, "a user profile with an archetype is required")
	case errors.Is(err, core.ErrUpstreamTimeout):
		h.logger.Error("chat turn timed out", "error", err)
		errorWithDetails(w, http.StatusInternalServerError, fallbackMessage, "completion timed out")
	default:
		h.logger.Error("chat turn failed", "error", err)
		errorWithDetails(w, http.StatusInternalServerError, fallbackMessage, "completion failed")
	}
}

// Memory handles GET /api/memory/{userID}: a read-only view of a user's
// conversational memory for the history UI.
func (h *Handler) Memory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		Error(w, http.StatusBadRequest, "userID is required")
		return
	}

	record, err := h.mem.Load(r.Context(), userID)
	if err != nil {
		h.logger.Error("memory read failed", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load memory")
		return
	}

	JSON(w, http.StatusOK, record)
}
