package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/agent"
	"github.com/halvard/scout/internal/log"
)

type stubRunner struct {
	turn agent.Turn
	err  error

	gotPrompt string
	gotSearch bool
	gotUserID string
}

func (s *stubRunner) Handle(_ context.Context, prompt string, search bool, userID string) (agent.Turn, error) {
	s.gotPrompt = prompt
	s.gotSearch = search
	s.gotUserID = userID
	return s.turn, s.err
}

func postChat(t *testing.T, h *ChatHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.handleChat(w, req)
	return w
}

func TestChatHandlerRunsTurn(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{turn: agent.Turn{Response: "Paris."}}
	h := NewChatHandler(runner, log.NewNop())

	w := postChat(t, h, ChatRequest{Prompt: "capital of France?", Search: true, UserID: "alice"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Paris.", resp.Response)

	assert.Equal(t, "capital of France?", runner.gotPrompt)
	assert.True(t, runner.gotSearch)
	assert.Equal(t, "alice", runner.gotUserID)
}

func TestChatHandlerDefaultsUserID(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{turn: agent.Turn{Response: "ok"}}
	h := NewChatHandler(runner, log.NewNop())

	w := postChat(t, h, ChatRequest{Prompt: "hello"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultUserID, runner.gotUserID)
	assert.False(t, runner.gotSearch)
}

func TestChatHandlerRejectsBadInput(t *testing.T) {
	t.Parallel()

	t.Run("invalid JSON body", func(t *testing.T) {
		t.Parallel()

		h := NewChatHandler(&stubRunner{}, log.NewNop())
		w := postChat(t, h, "not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
	})

	t.Run("missing prompt", func(t *testing.T) {
		t.Parallel()

		h := NewChatHandler(&stubRunner{}, log.NewNop())
		w := postChat(t, h, ChatRequest{UserID: "alice"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_PROMPT")
	})
}

func TestChatHandlerTurnFailure(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{err: errors.New("turn produced no assistant answer")}
	h := NewChatHandler(runner, log.NewNop())

	w := postChat(t, h, ChatRequest{Prompt: "hello"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "TURN_FAILED")
}

func TestChatHandlerTruncatedTurnStillAnswers(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{turn: agent.Turn{Response: "partial", Truncated: true}}
	h := NewChatHandler(runner, log.NewNop())

	w := postChat(t, h, ChatRequest{Prompt: "hello"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "partial", resp.Response)
}

func TestChatRouteMethod(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(&stubRunner{turn: agent.Turn{Response: "ok"}}, log.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", strings.NewReader(""))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
