// Package logbook persists one row per reply decision. Writes are
// fire-and-forget from the engine's perspective: a failed write is logged
// and never affects the HTTP response.
package logbook

import (
	"context"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// Entry is one reply decision worth remembering.
type Entry struct {
	ChatID    string
	Platform  string
	Phase     string
	ReplyText string
	Blocked   bool
	Flags     any
	Summary   chat.Summary
}

// Writer persists entries. Implementations must be safe for concurrent use.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}
