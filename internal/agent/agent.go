// Package agent runs conversation turns.
//
// A turn is a bounded loop over three stages: generate assistant text,
// check it for a tool directive, execute the tool and feed its result
// back as context for the next generation. The loop ends when a
// generation carries no directive, or when the round bound is exhausted,
// in which case the last generated text is returned best-effort with the
// Truncated flag set.
//
// Only the user prompt and the final assistant answer are persisted to
// the session; intermediate tool traffic is turn-local.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/halvard/scout/internal/llm"
	"github.com/halvard/scout/internal/log"
	"github.com/halvard/scout/internal/session"
)

// generator is the text-generation capability the agent consumes.
type generator interface {
	Generate(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// invoker dispatches tool directives. It never fails; problems come back
// as result content.
type invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) string
}

// Turn is the terminal value of one conversation turn. Truncated is set
// when the round bound was exhausted and Response is the best-effort
// last generation rather than a deliberate final answer.
type Turn struct {
	Response  string
	Truncated bool
}

// Agent orchestrates turns against a generation backend, a tool
// registry, and a session store.
type Agent struct {
	llm    generator
	tools  invoker
	store  session.Store
	logger log.Logger

	maxToolRounds int

	// newID is swappable so tests see deterministic tool-call ids.
	newID func() string
}

// New wires an Agent. maxToolRounds bounds the generate/execute loop per
// turn; values below 1 are rejected.
func New(gen generator, tools invoker, store session.Store, maxToolRounds int, logger log.Logger) (*Agent, error) {
	if gen == nil || tools == nil || store == nil {
		return nil, fmt.Errorf("generator, tools, and store are required")
	}
	if maxToolRounds < 1 {
		return nil, fmt.Errorf("maxToolRounds must be at least 1, got %d", maxToolRounds)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Agent{
		llm:           gen,
		tools:         tools,
		store:         store,
		logger:        logger,
		maxToolRounds: maxToolRounds,
		newID:         uuid.NewString,
	}, nil
}

// Handle runs one turn for the user. search enables the web lookup tool
// for this call only. The returned error is fatal (no assistant text was
// produced at all); every recoverable failure becomes answer text.
func (a *Agent) Handle(ctx context.Context, prompt string, search bool, userID string) (Turn, error) {
	tracer := otel.Tracer("scout/agent")
	ctx, span := tracer.Start(ctx, "agent.turn")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("turn.search", search),
		attribute.String("turn.user_id", userID),
	)

	working := a.workingMessages(ctx, userID, prompt)

	if err := a.store.Append(ctx, userID, session.RoleUser, prompt); err != nil {
		a.logger.Warn("persisting user prompt failed", "user_id", userID, "error", err)
	}

	system := systemPrompt(search)

	var lastAssistant string
	truncated := true

	for round := 0; round < a.maxToolRounds; round++ {
		text := a.generate(ctx, system, working)
		lastAssistant = text
		working = append(working, Message{Role: RoleAssistant, Text: text})

		if !wantsTool(text) {
			truncated = false
			break
		}

		directive, ok := parseDirective(text)
		if !ok {
			// Substring false positive; regenerate within the bound.
			a.logger.Debug("tool directive suspected but unparsable", "round", round)
			continue
		}

		content := a.tools.Invoke(ctx, directive.Name, directive.Arguments)
		working = append(working, Message{
			Role:       RoleTool,
			Text:       content,
			ToolName:   directive.Name,
			ToolCallID: a.newID(),
		})
		a.logger.Debug("tool executed", "tool", directive.Name, "round", round)
	}

	span.SetAttributes(attribute.Bool("turn.truncated", truncated))

	if lastAssistant == "" {
		return Turn{}, fmt.Errorf("turn produced no assistant answer")
	}
	if truncated {
		a.logger.Warn("tool round bound exhausted", "user_id", userID, "bound", a.maxToolRounds)
	}

	if err := a.store.Append(ctx, userID, session.RoleAssistant, lastAssistant); err != nil {
		a.logger.Warn("persisting assistant answer failed", "user_id", userID, "error", err)
	}

	return Turn{Response: lastAssistant, Truncated: truncated}, nil
}

// workingMessages seeds the turn's message list from the user side of
// the stored history plus the new prompt. Past assistant answers are not
// replayed; the model re-derives context from what the user said.
func (a *Agent) workingMessages(ctx context.Context, userID, prompt string) []Message {
	history, err := a.store.History(ctx, userID)
	if err != nil {
		a.logger.Warn("loading history failed, starting fresh", "user_id", userID, "error", err)
		history = nil
	}

	working := make([]Message, 0, len(history)+1)
	for _, entry := range history {
		if entry.Role != session.RoleUser {
			continue
		}
		working = append(working, Message{Role: RoleUser, Text: entry.Text})
	}
	return append(working, Message{Role: RoleUser, Text: prompt})
}

// generate runs one backend call and cleans the output. Backend failures
// become textual answers so the turn always completes.
func (a *Agent) generate(ctx context.Context, system string, working []Message) string {
	payload := make([]llm.ChatMessage, 0, len(working)+1)
	payload = append(payload, llm.ChatMessage{Role: llm.RoleSystem, Content: system})
	payload = append(payload, chatMessages(working)...)

	out, err := a.llm.Generate(ctx, payload)
	if err != nil {
		a.logger.Warn("generation failed", "error", err)
		return describeGenerationFailure(err)
	}
	return stripThink(out)
}

// chatMessages converts the working list to the backend's wire roles.
// Tool results travel as user messages because the backend models do not
// reliably honor a tool role.
func chatMessages(working []Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(working))
	for _, msg := range working {
		switch msg.Role {
		case RoleAssistant:
			out = append(out, llm.ChatMessage{Role: llm.RoleAssistant, Content: msg.Text})
		case RoleTool:
			out = append(out, llm.ChatMessage{
				Role:    llm.RoleUser,
				Content: fmt.Sprintf("Tool result for %s: %s", msg.ToolName, msg.Text),
			})
		default:
			out = append(out, llm.ChatMessage{Role: llm.RoleUser, Content: msg.Text})
		}
	}
	return out
}

// describeGenerationFailure maps backend errors to the answer text the
// user sees.
func describeGenerationFailure(err error) string {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return "Error: request timed out (model is taking too long)."
	case errors.Is(err, llm.ErrMalformed):
		return "Error: unexpected response format."
	default:
		return fmt.Sprintf("Error: request failed: %v", err)
	}
}
