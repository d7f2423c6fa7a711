// Package engine orchestrates the reply pipeline: normalize → resolve →
// safety gate → phase classification → routing → validation → scheduling.
// Every entity lives for one request; the engine keeps no session state.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
	"github.com/nniicckk78/chatai-backend-sub001/internal/events"
	"github.com/nniicckk78/chatai-backend-sub001/internal/logbook"
	"github.com/nniicckk78/chatai-backend-sub001/internal/normalize"
	"github.com/nniicckk78/chatai-backend-sub001/internal/phase"
	"github.com/nniicckk78/chatai-backend-sub001/internal/resolve"
	"github.com/nniicckk78/chatai-backend-sub001/internal/rules"
	"github.com/nniicckk78/chatai-backend-sub001/internal/safety"
	"github.com/nniicckk78/chatai-backend-sub001/internal/schedule"
	"github.com/nniicckk78/chatai-backend-sub001/internal/validate"
)

// Engine wires the pipeline to its collaborators. Logbook and events are
// optional — a nil writer or publisher disables that side channel.
type Engine struct {
	rules      *rules.Provider
	strategies map[chat.Phase]Strategy
	summarizer Summarizer
	logbook    logbook.Writer
	events     *events.Publisher
	logger     *slog.Logger

	now   func() time.Time
	delay func() int
}

func New(provider *rules.Provider, strategies map[chat.Phase]Strategy, summarizer Summarizer, lb logbook.Writer, ev *events.Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		rules:      provider,
		strategies: strategies,
		summarizer: summarizer,
		logbook:    lb,
		events:     ev,
		logger:     logger,
		now:        time.Now,
		delay:      schedule.PickDelaySeconds,
	}
}

// EmptyResponse is the well-formed non-blocking reply for unparseable
// payloads. The sentinel chat id keeps the caller's UI stable.
func EmptyResponse() Response {
	return emptyResponse(resolve.SentinelID)
}

// HandleReply runs the full pipeline on one raw request body.
func (e *Engine) HandleReply(ctx context.Context, raw map[string]any) Response {
	reqID := uuid.NewString()
	log := e.logger.With("request_id", reqID)

	snap := normalize.Normalize(raw)
	identity := resolve.Identity(raw)
	input := resolve.Input(snap, raw, e.now())

	log.Info("request resolved",
		"platform", string(snap.Platform),
		"messages", len(snap.Messages),
		"chat_id", identity.ID,
		"id_source", string(identity.Source),
		"confidence", string(input.Confidence),
	)

	// A completely empty conversation with nothing to answer is a valid
	// state, not an error — an empty reply avoids caller-side reload storms.
	if input.Confidence == chat.ConfidenceNone && len(snap.Messages) == 0 {
		return emptyResponse(identity.ID)
	}

	// The gate must run before any generation call and can veto everything.
	verdict := safety.Check(input.Text)
	if verdict.Blocked {
		log.Warn("safety gate blocked request",
			"reason", verdict.ReasonCode,
			"rule", verdict.MatchedRule,
			"chat_id", identity.ID,
		)
		e.publish(events.SubjectReplyBlocked, map[string]any{
			"chat_id": identity.ID,
			"reason":  verdict.ReasonCode,
			"rule":    verdict.MatchedRule,
		})
		resp := emptyResponse(identity.ID)
		resp.Flags.Blocked = true
		resp.Flags.Reason = verdict.ReasonCode
		return resp
	}

	ph := phase.Classify(snap, input)
	log.Info("phase classified", "phase", string(ph), "chat_id", identity.ID)

	// NormalReply without a usable customer message means there is nothing
	// to reply to.
	if ph == chat.PhaseNormalReply && input.Confidence == chat.ConfidenceNone {
		return emptyResponse(identity.ID)
	}

	snapRules := e.rules.Current()
	rc := chat.RoutingContext{
		Input:                input,
		Phase:                ph,
		Identity:             identity,
		Snapshot:             snap,
		Verdict:              verdict,
		OperatorOfferedImage: operatorOfferedImage(snap),
		Guidance:             snapRules.SituationalGuidance,
	}

	text, violations, err := e.generateValidated(ctx, rc, snapRules.ForbiddenPhrases, log)
	if err != nil {
		log.Error("generation failed", "phase", string(ph), "chat_id", identity.ID, "error", err)
		resp := emptyResponse(identity.ID)
		resp.ResText = "Die Antwort konnte nicht erstellt werden, bitte manuell antworten."
		resp.ReplyText = resp.ResText
		resp.Flags.Blocked = true
		resp.Flags.Reason = "generation_failed"
		return resp
	}

	resp := emptyResponse(identity.ID)
	resp.ResText = text
	resp.ReplyText = text
	resp.Flags.Stale = input.IsStale
	if len(violations) > 0 {
		// Best effort after max retries: keep the text, alert the operator.
		resp.Flags.Violations = violations
		for _, v := range violations {
			if v == validate.ViolationNoQuestion {
				resp.Flags.NoQuestionError = true
			}
		}
	}
	resp.Actions = []Action{{Type: ActionInsertAndSend, Delay: e.delay()}}

	if e.summarizer != nil {
		if summary, err := e.summarizer.Summarize(ctx, rc, text); err == nil {
			resp.Summary = summary
		} else {
			log.Warn("summarizer failed", "error", err)
		}
	}

	e.record(rc, resp)
	return resp
}

// generateValidated runs the bounded generate→validate loop. Retries are
// strictly sequential: each retry hint depends on the previous violations.
// When all attempts violate rules, the attempt with the fewest violations
// wins.
func (e *Engine) generateValidated(ctx context.Context, rc chat.RoutingContext, forbidden []string, log *slog.Logger) (string, []string, error) {
	strategy, ok := e.strategies[rc.Phase]
	if !ok {
		return "", nil, errStrategyMissing
	}

	bestText := ""
	var bestViolations []string
	hint := ""

	for attempt := 0; attempt < validate.MaxAttempts; attempt++ {
		text, err := strategy.Generate(ctx, rc, hint)
		if err != nil {
			if bestText != "" {
				break
			}
			return "", nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			if bestText != "" {
				break
			}
			return "", nil, errEmptyGenerationOutput
		}

		violations := validate.Check(text, rc.Phase, forbidden)
		if len(violations) == 0 {
			return text, nil, nil
		}

		log.Info("validation failed, retrying",
			"attempt", attempt,
			"violations", violations,
		)

		if bestText == "" || len(violations) < len(bestViolations) {
			bestText = text
			bestViolations = violations
		}
		hint = validate.Hint(violations, validate.MatchedForbidden(text, forbidden))
	}

	return bestText, bestViolations, nil
}

// operatorOfferedImage reports whether the operator already offered to send
// a picture, so image prompts do not repeat the offer.
func operatorOfferedImage(snap chat.Snapshot) bool {
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		m := snap.Messages[i]
		if m.Sender != chat.SenderOperator {
			continue
		}
		t := strings.ToLower(m.Text)
		if (strings.Contains(t, "bild") || strings.Contains(t, "foto")) &&
			(strings.Contains(t, "schick") || strings.Contains(t, "send") || strings.Contains(t, "zeig")) {
			return true
		}
	}
	return false
}

// record writes the logbook entry and monitoring event, fire-and-forget.
func (e *Engine) record(rc chat.RoutingContext, resp Response) {
	e.publish(events.SubjectReplyGenerated, map[string]any{
		"chat_id":  resp.ChatID,
		"platform": string(rc.Snapshot.Platform),
		"phase":    string(rc.Phase),
		"blocked":  resp.Flags.Blocked,
	})

	if e.logbook == nil {
		return
	}
	entry := logbook.Entry{
		ChatID:    resp.ChatID,
		Platform:  string(rc.Snapshot.Platform),
		Phase:     string(rc.Phase),
		ReplyText: resp.ResText,
		Blocked:   resp.Flags.Blocked,
		Flags:     resp.Flags,
		Summary:   resp.Summary,
	}
	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.logbook.Write(wctx, entry); err != nil {
			e.logger.Warn("logbook write failed", "chat_id", entry.ChatID, "error", err)
		}
	}()
}

func (e *Engine) publish(subject string, payload map[string]any) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(subject, payload); err != nil {
		e.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
