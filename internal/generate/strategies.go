package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// Generator hands out one strategy per phase, all backed by the same client.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Strategy returns the generation strategy for a phase.
func (g *Generator) Strategy(ph chat.Phase) *PhaseStrategy {
	return &PhaseStrategy{client: g.client, phase: ph}
}

// PhaseStrategy generates replies in one response mode. Safe to call
// repeatedly with the same routing context; retryHint names the violation
// of the previous attempt.
type PhaseStrategy struct {
	client *Client
	phase  chat.Phase
}

func (s *PhaseStrategy) Generate(ctx context.Context, rc chat.RoutingContext, retryHint string) (string, error) {
	text, err := s.client.Complete(ctx, systemPrompt(s.phase, rc.Guidance), userPrompt(rc, retryHint))
	if err != nil {
		return "", fmt.Errorf("generate %s reply: %w", s.phase, err)
	}
	return strings.TrimSpace(text), nil
}

// Summarize produces the structured logbook delta. A malformed model answer
// yields an error; the engine degrades to an empty summary.
func (g *Generator) Summarize(ctx context.Context, rc chat.RoutingContext, reply string) (chat.Summary, error) {
	var b strings.Builder
	if history := renderHistory(rc.Snapshot); history != "" {
		b.WriteString("Chatverlauf:\n")
		b.WriteString(history)
	}
	if rc.Input.Text != "" {
		b.WriteString("Aktuelle Kundennachricht:\n")
		b.WriteString(rc.Input.Text)
		b.WriteString("\n")
	}
	b.WriteString("Gesendete Antwort:\n")
	b.WriteString(reply)

	raw, err := g.client.Complete(ctx, summaryPrompt, b.String())
	if err != nil {
		return chat.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	var summary chat.Summary
	if err := json.Unmarshal([]byte(stripFences(raw)), &summary); err != nil {
		return chat.Summary{}, fmt.Errorf("parse summary json: %w", err)
	}
	if summary.User == nil {
		summary.User = map[string]any{}
	}
	if summary.Assistant == nil {
		summary.Assistant = map[string]any{}
	}
	return summary, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
