package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want chat.Platform
	}{
		{"explicit origin field", map[string]any{"origin": "amato"}, chat.PlatformAmato},
		{"platform id string", map[string]any{"platform": "Flirt24-Desktop"}, chat.PlatformFlirt24},
		{"page url substring", map[string]any{"url": "https://www.herzblatt.de/chat/123"}, chat.PlatformHerzblatt},
		{"origin wins over url", map[string]any{"origin": "amato", "url": "https://flirt24.de"}, chat.PlatformAmato},
		{"unknown origin is valid", map[string]any{"origin": "somethingelse"}, chat.PlatformUnknown},
		{"empty payload", map[string]any{}, chat.PlatformUnknown},
		{"non-string origin ignored", map[string]any{"origin": 42.0, "url": "flirt24.de/x"}, chat.PlatformFlirt24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPlatform(tt.raw); got != tt.want {
				t.Errorf("DetectPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifySystem(t *testing.T) {
	tests := []struct {
		text string
		want chat.SystemKind
	}{
		{"Anna hat dich geliked", chat.SystemLike},
		{"Maria hat dir einen Kuss geschickt", chat.SystemKiss},
		{"Neue Freundschaftsanfrage von Tom", chat.SystemFriendRequest},
		{"Tom möchte mit dir befreundet sein", chat.SystemFriendRequest},
		{"Bild wurde übertragen", chat.SystemImageTransfer},
		{"KI-Check: bestätige mit dem Code 8F3X", chat.SystemKICheck},
		{"Nicht genügend Credits für diese Nachricht", chat.SystemCredits},
		{"Hallo, wie geht es dir?", chat.SystemNone},
		{"", chat.SystemNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ClassifySystem(tt.text); got != tt.want {
				t.Errorf("ClassifySystem(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize_TextFieldVariants(t *testing.T) {
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "eins", "sender": "customer"},
			map[string]any{"content": "zwei", "sender": "operator"},
			map[string]any{"message": "drei", "sender": "operator"},
			map[string]any{"body": "vier", "sender": "operator"},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(snap.Messages))
	}
	for i, want := range []string{"eins", "zwei", "drei", "vier"} {
		if snap.Messages[i].Text != want {
			t.Errorf("message %d text = %q, want %q", i, snap.Messages[i].Text, want)
		}
	}
}

func TestNormalize_ReversesDecreasingTimestamps(t *testing.T) {
	raw := map[string]any{
		"origin": "amato",
		"messages": []any{
			map[string]any{"text": "neueste", "sender": "customer", "timestamp": 3_000_000_000_000.0},
			map[string]any{"text": "mitte", "sender": "operator", "timestamp": 2_000_000_000_000.0},
			map[string]any{"text": "älteste", "sender": "customer", "timestamp": 1_000_000_000_000.0},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(snap.Messages))
	}
	if snap.Messages[0].Text != "älteste" || snap.Messages[2].Text != "neueste" {
		t.Errorf("expected oldest→newest order, got %q ... %q", snap.Messages[0].Text, snap.Messages[2].Text)
	}
}

func TestNormalize_FixedConventionIgnoresTimestamps(t *testing.T) {
	// Flirt24 arrays are always oldest→newest; its timestamps are garbage
	// and must never trigger a reversal.
	raw := map[string]any{
		"origin": "flirt24",
		"messages": []any{
			map[string]any{"text": "erste", "sender": "customer", "timestamp": 9_000_000_000_000.0},
			map[string]any{"text": "zweite", "sender": "operator", "timestamp": 1_000_000_000_000.0},
		},
	}

	snap := Normalize(raw)
	if snap.Messages[0].Text != "erste" {
		t.Errorf("fixed-convention platform was reordered: first = %q", snap.Messages[0].Text)
	}
}

func TestNormalize_CollapsesCustomerRun(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "Hey du", "sender": "customer", "timestamp": float64(base.UnixMilli())},
			map[string]any{"text": "wie geht es dir?", "sender": "customer", "timestamp": float64(base.Add(30 * time.Second).UnixMilli())},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 1 {
		t.Fatalf("expected messages 30s apart to merge, got %d messages", len(snap.Messages))
	}
	if snap.Messages[0].Text != "Hey du wie geht es dir?" {
		t.Errorf("merged text = %q", snap.Messages[0].Text)
	}
}

func TestNormalize_CollapseRespectsWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "erste", "sender": "customer", "timestamp": float64(base.UnixMilli())},
			map[string]any{"text": "zweite", "sender": "customer", "timestamp": float64(base.Add(5 * time.Minute).UnixMilli())},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 2 {
		t.Fatalf("messages 5m apart must not merge, got %d messages", len(snap.Messages))
	}
}

func TestNormalize_OperatorBreaksCollapse(t *testing.T) {
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "erste", "sender": "customer"},
			map[string]any{"text": "antwort", "sender": "operator"},
			map[string]any{"text": "zweite", "sender": "customer"},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 3 {
		t.Fatalf("operator message must end the run, got %d messages", len(snap.Messages))
	}
}

func TestNormalize_SystemNeverAbsorbed(t *testing.T) {
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "Hey", "sender": "customer"},
			map[string]any{"text": "Anna hat dich geliked"},
			map[string]any{"text": "bist du da?", "sender": "customer"},
		},
	}

	snap := Normalize(raw)
	var customer []chat.Message
	var system []chat.Message
	for _, m := range snap.Messages {
		switch m.Sender {
		case chat.SenderCustomer:
			customer = append(customer, m)
		case chat.SenderSystem:
			system = append(system, m)
		}
	}
	if len(system) != 1 {
		t.Fatalf("expected the like banner to stay a system message, got %d", len(system))
	}
	if len(customer) != 1 {
		t.Fatalf("expected the customer run to merge across the banner, got %d", len(customer))
	}
	if customer[0].Text != "Hey bist du da?" {
		t.Errorf("merged text = %q — must not absorb the banner phrase", customer[0].Text)
	}
}

func TestNormalize_ImageAndTextAreOneTurn(t *testing.T) {
	raw := map[string]any{
		"messages": []any{
			map[string]any{"text": "schau mal", "sender": "customer"},
			map[string]any{"sender": "customer", "image": true},
		},
	}

	snap := Normalize(raw)
	if len(snap.Messages) != 1 {
		t.Fatalf("text + image back-to-back must be one turn, got %d", len(snap.Messages))
	}
	m := snap.Messages[0]
	if m.Text != "schau mal" || !m.HasImage {
		t.Errorf("merged turn = %+v, want text kept and image flagged", m)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"origin": "amato",
		"messages": []any{
			map[string]any{"text": "b", "sender": "operator", "timestamp": 2_000_000_000_000.0},
			map[string]any{"text": "a", "sender": "customer", "timestamp": 1_000_000_000_000.0},
		},
	}

	first := Normalize(raw)
	second := Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNormalize_EmptyAndMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"no messages key", map[string]any{}},
		{"empty array", map[string]any{"messages": []any{}}},
		{"non-map elements", map[string]any{"messages": []any{"huh", 42.0}}},
		{"empty messages dropped", map[string]any{"messages": []any{map[string]any{"text": ""}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Normalize(tt.raw)
			if len(snap.Messages) != 0 {
				t.Errorf("expected empty snapshot, got %d messages", len(snap.Messages))
			}
		})
	}
}

func TestParseSender_Defaults(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]any
		want chat.Sender
	}{
		{"sender customer", map[string]any{"sender": "customer"}, chat.SenderCustomer},
		{"from out", map[string]any{"from": "out"}, chat.SenderOperator},
		{"role assistant", map[string]any{"role": "assistant"}, chat.SenderOperator},
		{"type kunde", map[string]any{"type": "Kunde"}, chat.SenderCustomer},
		{"missing sender defaults to customer", map[string]any{}, chat.SenderCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSender(tt.msg); got != tt.want {
				t.Errorf("parseSender() = %q, want %q", got, tt.want)
			}
		})
	}
}
