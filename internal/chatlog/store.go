// Package chatlog persists chat transcripts to postgres. Writes are best
// effort: a failed insert is logged and counted but never fails the chat
// turn that produced it.
package chatlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"sisustusbot/internal/common/errors"
	"sisustusbot/internal/common/logger"
)

// Entry is one logged chat turn.
type Entry struct {
	SessionID        string
	CartID           string
	UserMessage      string
	AssistantMessage string
	Intent           string
	StoreOrigin      string
	CreatedAt        time.Time
}

// Store writes chat transcript entries. A nil *Store is a valid no-op
// writer so callers never branch on whether logging is configured.
type Store struct {
	db     *sql.DB
	origin string
	log    logger.Logger
}

const insertEntrySQL = `
INSERT INTO chat_log (id, session_id, cart_id, user_message, assistant_message, intent, store_origin, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// NewStore returns a transcript store writing through db.
func NewStore(db *sql.DB, storeOrigin string, log logger.Logger) *Store {
	return &Store{db: db, origin: storeOrigin, log: log}
}

// EnsureSchema creates the chat_log table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS chat_log (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL,
	cart_id TEXT NOT NULL DEFAULT '',
	user_message TEXT NOT NULL,
	assistant_message TEXT NOT NULL,
	intent TEXT NOT NULL DEFAULT '',
	store_origin TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Write inserts one transcript entry. Errors are returned so tests can
// observe them, but LogTurn is the caller-facing path and swallows them.
func (s *Store) Write(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.StoreOrigin == "" {
		entry.StoreOrigin = s.origin
	}
	_, err := s.db.ExecContext(ctx, insertEntrySQL,
		uuid.NewString(),
		entry.SessionID,
		entry.CartID,
		entry.UserMessage,
		entry.AssistantMessage,
		entry.Intent,
		entry.StoreOrigin,
		entry.CreatedAt,
	)
	if err != nil {
		return errors.NewChatLogWriteFailedError(err)
	}
	return nil
}

// LogTurn records a turn without blocking or failing the chat response.
func (s *Store) LogTurn(ctx context.Context, entry Entry) {
	if s == nil || s.db == nil {
		return
	}
	if err := s.Write(ctx, entry); err != nil {
		s.log.Warn("chat log write failed", map[string]interface{}{
			"session_id": entry.SessionID,
			"error":      err.Error(),
		})
	}
}
