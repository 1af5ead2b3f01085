// Package llm provides the client for the text-generation backend.
//
// The backend is any OpenAI-compatible chat-completions endpoint; in
// practice this is a local Ollama instance. The client is deliberately
// opaque: it takes role-tagged messages and returns generated text, and
// its failure modes (timeout, malformed response) are classified with
// sentinel errors so callers can decide how to surface them.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/halvard/scout/internal/log"
)

var (
	// ErrTimeout indicates the backend did not answer within the read timeout.
	ErrTimeout = errors.New("generation request timed out")

	// ErrMalformed indicates the backend answered with an unexpected payload.
	ErrMalformed = errors.New("unexpected generation response format")
)

const (
	// connectTimeout is deliberately short; a backend that cannot accept a
	// connection quickly is down, not slow.
	connectTimeout = 5 * time.Second

	// readTimeout is generous: local models may legitimately take up to
	// two minutes to produce a completion.
	readTimeout = 2 * time.Minute
)

// Role values accepted by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message in a chat-completions request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint string
	model    string
	http     *http.Client
	logger   log.Logger
}

// New creates a Client for the given base URL (e.g. http://localhost:11434)
// and model name.
func New(baseURL, model string, logger log.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		endpoint: baseURL + "/v1/chat/completions",
		model:    model,
		http: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
		logger: logger,
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the ordered message list to the backend and returns the
// generated text. Timeouts are reported as ErrTimeout, payload surprises
// as ErrMalformed; both are recoverable at the turn level.
func (c *Client) Generate(ctx context.Context, messages []ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("generation timed out", "model", c.model, "elapsed", time.Since(start))
			return "", ErrTimeout
		}
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation request failed: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrMalformed
	}

	c.logger.Debug("generation completed",
		"model", c.model,
		"messages", len(messages),
		"elapsed", time.Since(start))
	return parsed.Choices[0].Message.Content, nil
}

// isTimeout reports whether err is a deadline-style failure from the
// transport or the enclosing context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
