// Package normalize unifies the heterogeneous payload shapes the browser
// extensions produce into one canonical conversation snapshot. It is a pure
// transformation: the same raw payload always yields the same snapshot.
package normalize

import (
	"strings"
	"time"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// collapseWindow is the maximum gap between two customer messages that are
// still treated as one turn (e.g. text + image sent back-to-back).
const collapseWindow = 2 * time.Minute

// Normalize builds the canonical snapshot from a raw request body. It never
// fails: a payload without recognizable messages yields an empty snapshot.
func Normalize(raw map[string]any) chat.Snapshot {
	platform := DetectPlatform(raw)
	msgs := extractMessages(raw)
	msgs = canonicalOrder(msgs, platform)
	msgs = collapseCustomerRuns(msgs)
	return chat.Snapshot{Platform: platform, Messages: msgs}
}

var messageArrayKeys = []string{"messages", "chat", "dialog", "history"}

func extractMessages(raw map[string]any) []chat.Message {
	var arr []any
	for _, key := range messageArrayKeys {
		if v, ok := raw[key].([]any); ok {
			arr = v
			break
		}
	}

	var out []chat.Message
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		msg := parseMessage(m, i)
		if msg.Text == "" && !msg.HasImage {
			continue
		}
		out = append(out, msg)
	}
	return out
}

var textKeys = []string{"text", "content", "message", "body"}

func parseMessage(m map[string]any, idx int) chat.Message {
	msg := chat.Message{RawIndex: idx}

	for _, key := range textKeys {
		if s := stringField(m, key); s != "" {
			msg.Text = s
			break
		}
	}

	msg.HasImage = hasImage(m)
	msg.Timestamp = parseTimestamp(m)

	if kind := ClassifySystem(msg.Text); kind != chat.SystemNone {
		msg.Sender = chat.SenderSystem
		msg.SystemKind = kind
		return msg
	}

	msg.Sender = parseSender(m)
	return msg
}

var customerTokens = map[string]bool{
	"customer": true, "client": true, "user": true, "kunde": true,
	"in": true, "received": true, "them": true,
}

var operatorTokens = map[string]bool{
	"operator": true, "moderator": true, "agent": true, "fake": true,
	"out": true, "sent": true, "me": true, "assistant": true,
}

func parseSender(m map[string]any) chat.Sender {
	for _, key := range []string{"sender", "from", "role", "type", "author"} {
		s := strings.ToLower(stringField(m, key))
		switch {
		case customerTokens[s]:
			return chat.SenderCustomer
		case operatorTokens[s]:
			return chat.SenderOperator
		}
	}
	// Extensions that omit the sender only scrape incoming messages.
	return chat.SenderCustomer
}

func hasImage(m map[string]any) bool {
	for _, key := range []string{"image", "img", "imageUrl", "attachment"} {
		switch v := m[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
	}
	if b, ok := m["hasImage"].(bool); ok && b {
		return true
	}
	return false
}

func parseTimestamp(m map[string]any) time.Time {
	for _, key := range []string{"timestamp", "time", "ts", "date", "createdAt"} {
		switch v := m[key].(type) {
		case float64:
			if v > 1e12 { // epoch millis
				return time.UnixMilli(int64(v)).UTC()
			}
			if v > 1e9 { // epoch seconds
				return time.Unix(int64(v), 0).UTC()
			}
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
				if t, err := time.Parse(layout, v); err == nil {
					return t.UTC()
				}
			}
		}
	}
	return time.Time{}
}

// canonicalOrder ensures oldest→newest. Platforms with a fixed convention
// already ship that order and their timestamps must not override it; for
// the rest, a monotonic decreasing timestamp sequence means the array was
// newest-first and gets reversed.
func canonicalOrder(msgs []chat.Message, platform chat.Platform) []chat.Message {
	if conventionFor(platform).fixedOldestFirst {
		return msgs
	}
	if !timestampsDecreasing(msgs) {
		return msgs
	}
	reversed := make([]chat.Message, len(msgs))
	for i, m := range msgs {
		reversed[len(msgs)-1-i] = m
	}
	return reversed
}

func timestampsDecreasing(msgs []chat.Message) bool {
	var prev time.Time
	havePrev := false
	strictly := false
	for _, m := range msgs {
		if !m.HasTimestamp() {
			continue
		}
		if havePrev {
			if m.Timestamp.After(prev) {
				return false
			}
			if m.Timestamp.Before(prev) {
				strictly = true
			}
		}
		prev = m.Timestamp
		havePrev = true
	}
	return strictly
}

// collapseCustomerRuns merges consecutive customer messages that fall within
// the collapse window into one turn. System messages never get absorbed into
// the combined text, and an operator message always ends a run.
func collapseCustomerRuns(msgs []chat.Message) []chat.Message {
	var out []chat.Message
	for _, m := range msgs {
		if m.Sender != chat.SenderCustomer {
			out = append(out, m)
			continue
		}
		if last := lastCustomer(out); last != nil && withinCollapseWindow(*last, m) {
			if m.Text != "" {
				if last.Text != "" {
					last.Text += " " + m.Text
				} else {
					last.Text = m.Text
				}
			}
			last.HasImage = last.HasImage || m.HasImage
			if m.HasTimestamp() {
				last.Timestamp = m.Timestamp
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

// lastCustomer returns the trailing customer message of out, unless an
// operator message came after it. Trailing system banners are skipped so a
// like notification between two quick customer texts does not split the turn.
func lastCustomer(out []chat.Message) *chat.Message {
	for i := len(out) - 1; i >= 0; i-- {
		switch out[i].Sender {
		case chat.SenderCustomer:
			return &out[i]
		case chat.SenderOperator:
			return nil
		}
	}
	return nil
}

func withinCollapseWindow(a, b chat.Message) bool {
	if !a.HasTimestamp() || !b.HasTimestamp() {
		// No usable timestamps: back-to-back in the array counts as one turn.
		return true
	}
	gap := b.Timestamp.Sub(a.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	return gap <= collapseWindow
}
