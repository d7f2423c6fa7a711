package engine

import (
	"context"
	"errors"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// Error taxonomy. All of these are recoverable and turned into well-formed
// HTTP 200 responses; only unanticipated errors escape to the top-level
// handler as 500s.
var (
	ErrMalformedInput        = errors.New("malformed input")
	ErrSafetyBlocked         = errors.New("safety blocked")
	ErrNoCustomerMessage     = errors.New("no customer message found")
	ErrGenerationFailed      = errors.New("generation failed")
	ErrValidationExhausted   = errors.New("validation exhausted")
	ErrUnexpectedInternal    = errors.New("unexpected internal error")
	errStrategyMissing       = errors.New("no strategy for phase")
	errEmptyGenerationOutput = errors.New("empty generation output")
)

// Strategy generates a reply for one phase. It must be callable repeatedly
// with the same context; retryHint names the prior violation on retries.
type Strategy interface {
	Generate(ctx context.Context, rc chat.RoutingContext, retryHint string) (string, error)
}

// Summarizer produces the structured logbook delta for the caller. Failures
// degrade to an empty summary and never fail the request.
type Summarizer interface {
	Summarize(ctx context.Context, rc chat.RoutingContext, reply string) (chat.Summary, error)
}

// Action is a scheduled caller-side action.
type Action struct {
	Type  string `json:"type"`
	Delay int    `json:"delay"`
}

// ActionInsertAndSend tells the extension to insert the text and send it
// after the delay.
const ActionInsertAndSend = "insert_and_send"

// Flags carries the blocked bit plus diagnostic flags for the operator UI.
type Flags struct {
	Blocked         bool     `json:"blocked"`
	Reason          string   `json:"reason,omitempty"`
	NoQuestionError bool     `json:"noQuestionError,omitempty"`
	Violations      []string `json:"violations,omitempty"`
	Stale           bool     `json:"stale,omitempty"`
}

// Response is the full HTTP reply body. ChatID is always present and never
// empty; Actions is empty or holds exactly one send action.
type Response struct {
	ResText   string       `json:"resText"`
	ReplyText string       `json:"replyText"`
	Summary   chat.Summary `json:"summary"`
	ChatID    string       `json:"chatId"`
	Actions   []Action     `json:"actions"`
	Flags     Flags        `json:"flags"`
}

func emptyResponse(chatID string) Response {
	return Response{
		ChatID:  chatID,
		Summary: chat.Summary{User: map[string]any{}, Assistant: map[string]any{}},
		Actions: []Action{},
	}
}
