// Package resolve infers the two facts the pipeline cannot trust the payload
// to state directly: which text is "the current customer message" and which
// string identifies the conversation.
package resolve

import (
	"strings"
	"time"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// FreshnessWindow is how old a message may be and still count as the
// current turn.
const FreshnessWindow = 10 * time.Minute

// substantiveLength is the threshold above which the longest of several
// fresh messages is preferred over the strictly newest one, so a short
// interjection does not mask the real content.
const substantiveLength = 80

// ImagePlaceholder stands in for the text of an image-only message.
const ImagePlaceholder = "[Der Kunde hat ein Bild geschickt]"

// legacyTextKeys are top-level fields older extension versions used to carry
// the current message directly. They win over any snapshot inference.
var legacyTextKeys = []string{"currentMessage", "newMessage", "lastMessage", "userMessage"}

// Input resolves the canonical current customer message. It never fails:
// absence of input is a valid outcome with Confidence none.
func Input(snap chat.Snapshot, raw map[string]any, now time.Time) chat.ResolvedInput {
	for _, key := range legacyTextKeys {
		if v, ok := raw[key].(string); ok {
			if text := strings.TrimSpace(v); text != "" {
				return chat.ResolvedInput{Text: text, Confidence: chat.ConfidenceDefinite}
			}
		}
	}

	fresh := freshCustomerMessages(snap, now)
	if len(fresh) > 0 {
		pick := pickFresh(fresh)
		if pick.HasImage && strings.TrimSpace(pick.Text) == "" {
			return chat.ResolvedInput{
				Text:        ImagePlaceholder,
				IsImageOnly: true,
				Confidence:  chat.ConfidenceDefinite,
			}
		}
		return chat.ResolvedInput{Text: pick.Text, Confidence: chat.ConfidenceDefinite}
	}

	if last, ok := snap.LastCustomer(); ok {
		if last.HasImage && strings.TrimSpace(last.Text) == "" {
			return chat.ResolvedInput{
				Text:        ImagePlaceholder,
				IsImageOnly: true,
				IsStale:     true,
				Confidence:  chat.ConfidenceFallback,
			}
		}
		return chat.ResolvedInput{
			Text:       last.Text,
			IsStale:    true,
			Confidence: chat.ConfidenceFallback,
		}
	}

	return chat.ResolvedInput{Confidence: chat.ConfidenceNone}
}

// freshCustomerMessages returns customer messages inside the freshness
// window, oldest→newest. A message without a timestamp counts as fresh —
// the platform scraped it off the live chat just now.
func freshCustomerMessages(snap chat.Snapshot, now time.Time) []chat.Message {
	var out []chat.Message
	for _, m := range snap.Messages {
		if m.Sender != chat.SenderCustomer {
			continue
		}
		if m.HasTimestamp() && now.Sub(m.Timestamp) > FreshnessWindow {
			continue
		}
		out = append(out, m)
	}
	return out
}

// pickFresh prefers the longest message over the substantive threshold;
// otherwise the newest wins. Best-effort heuristic, see the tie-break tests.
func pickFresh(fresh []chat.Message) chat.Message {
	pick := fresh[len(fresh)-1]
	if len(fresh) == 1 {
		return pick
	}
	longest := pick
	for _, m := range fresh {
		if len(m.Text) > len(longest.Text) {
			longest = m
		}
	}
	if len(longest.Text) > substantiveLength {
		return longest
	}
	return pick
}
