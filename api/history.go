package api

import (
	"net/http"

	"github.com/halvard/scout/internal/log"
	"github.com/halvard/scout/internal/session"
)

// HistoryHandler serves the conversation-log endpoints.
type HistoryHandler struct {
	store  session.Store
	logger log.Logger
}

// NewHistoryHandler creates a history handler over the given store.
func NewHistoryHandler(store session.Store, logger log.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// RegisterRoutes registers history routes on the given mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", h.handleGet)
	mux.HandleFunc("DELETE /api/history", h.handleClear)
}

// HistoryResponse is the history response body.
type HistoryResponse struct {
	History []session.Entry `json:"history"`
}

func (h *HistoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)

	entries, err := h.store.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading history failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "HISTORY_FAILED", "could not load history", h.logger)
		return
	}
	if entries == nil {
		entries = []session.Entry{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{History: entries}, h.logger)
}

func (h *HistoryHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)

	if err := h.store.Clear(r.Context(), userID); err != nil {
		h.logger.Error("clearing history failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "CLEAR_FAILED", "could not clear history", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userIDParam(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return defaultUserID
}
