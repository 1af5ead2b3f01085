package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/halvard/scout/internal/agent"
	"github.com/halvard/scout/internal/log"
)

// defaultUserID scopes conversations of callers that do not identify
// themselves.
const defaultUserID = "default"

// TurnRunner runs one conversation turn.
type TurnRunner interface {
	Handle(ctx context.Context, prompt string, search bool, userID string) (agent.Turn, error)
}

// ChatHandler serves the turn endpoint.
type ChatHandler struct {
	runner TurnRunner
	logger log.Logger
}

// NewChatHandler creates a chat handler over the given runner.
func NewChatHandler(runner TurnRunner, logger log.Logger) *ChatHandler {
	return &ChatHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

// ChatRequest is the turn request body. Search enables the web lookup
// tool for this turn only.
type ChatRequest struct {
	Prompt string `json:"prompt"`
	Search bool   `json:"search"`
	UserID string `json:"user_id"`
}

// ChatResponse is the turn response body.
type ChatResponse struct {
	Response string `json:"response"`
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON", h.logger)
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PROMPT", "prompt is required", h.logger)
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	turn, err := h.runner.Handle(r.Context(), req.Prompt, req.Search, req.UserID)
	if err != nil {
		h.logger.Error("turn failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "TURN_FAILED", "no answer was produced", h.logger)
		return
	}
	if turn.Truncated {
		h.logger.Warn("turn truncated", "user_id", req.UserID)
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: turn.Response}, h.logger)
}
