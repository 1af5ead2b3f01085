// Package session provides conversation history persistence.
//
// A session is an append-only per-user message log with a sliding
// expiry: every append refreshes a 7-day TTL. Two interchangeable
// backends implement the same capability: a Redis store for real
// deployments and an in-process store used when Redis is unreachable.
// Callers never learn which backend is active.
//
// # Concurrency
//
// Both backends support concurrent access for different users without
// interference. Appends are atomic per call, so concurrent turns for the
// same user cannot interleave a single entry.
package session

import (
	"context"
	"time"

	"github.com/halvard/scout/internal/log"
)

// TTL is the session expiry window, refreshed on every append.
const TTL = 7 * 24 * time.Hour

// Roles stored in the history log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Entry is one persisted turn of conversation.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Store is the conversation-history capability. Implementations must keep
// entries append-only and order-preserving per user.
type Store interface {
	// Append adds an entry to the user's log and refreshes its expiry.
	Append(ctx context.Context, userID, role, text string) error

	// History returns the full ordered log for the user. A user with no
	// history yields an empty slice, not an error.
	History(ctx context.Context, userID string) ([]Entry, error)

	// Clear deletes the user's log.
	Clear(ctx context.Context, userID string) error
}

// Open connects to Redis at addr and returns a redis-backed Store. If the
// connection cannot be established it falls back to the in-process store;
// history then lives only as long as the process, with otherwise identical
// semantics.
func Open(ctx context.Context, addr string, db int, logger log.Logger) Store {
	if logger == nil {
		logger = log.NewNop()
	}

	store, err := NewRedisStore(ctx, addr, db, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory history store",
			"addr", addr, "error", err)
		return NewMemoryStore()
	}

	logger.Info("using redis history store", "addr", addr, "db", db)
	return store
}
