package resolve

import (
	"testing"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

func TestIdentity_Cascade(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]any
		wantID     string
		wantSource chat.IdentitySource
	}{
		{
			"explicit chatId string",
			map[string]any{"chatId": "123456"},
			"123456", chat.IdentityExplicitField,
		},
		{
			"explicit numeric id",
			map[string]any{"conversationId": 987654.0},
			"987654", chat.IdentityExplicitField,
		},
		{
			"snake_case alternate",
			map[string]any{"chat_id": "555777"},
			"555777", chat.IdentityExplicitField,
		},
		{
			"nested profile id",
			map[string]any{"profile": map[string]any{"id": "424242"}},
			"424242", chat.IdentityExplicitField,
		},
		{
			"id-ish key anywhere in the payload",
			map[string]any{"meta": map[string]any{"dialogId": "31337555"}},
			"31337555", chat.IdentityRecursiveScan,
		},
		{
			"url query parameter",
			map[string]any{"data": "x", "url": "https://amato.de/app?foo=bar&dialog=778899"},
			"778899", chat.IdentityURLPattern,
		},
		{
			"url path segment",
			map[string]any{"url": "https://herzblatt.de/chats/44556677"},
			"44556677", chat.IdentityURLPattern,
		},
		{
			"sentinel when nothing id-shaped exists",
			map[string]any{"text": "hallo", "foo": "bar"},
			SentinelID, chat.IdentitySentinel,
		},
		{
			"explicit field wins over everything",
			map[string]any{
				"chatId":  "111222",
				"url":     "https://amato.de/chat/999888",
				"profile": map[string]any{"id": "333444"},
			},
			"111222", chat.IdentityExplicitField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identity(tt.raw)
			if got.ID != tt.wantID {
				t.Errorf("Identity().ID = %q, want %q", got.ID, tt.wantID)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Identity().Source = %q, want %q", got.Source, tt.wantSource)
			}
		})
	}
}

func TestIdentity_NonIDShapedValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"alphanumeric id", map[string]any{"chatId": "abc123"}},
		{"negative number", map[string]any{"chatId": -5.0}},
		{"fractional number", map[string]any{"chatId": 12.5}},
		{"empty string", map[string]any{"chatId": "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identity(tt.raw)
			if got.ID != SentinelID {
				t.Errorf("Identity().ID = %q, want sentinel", got.ID)
			}
		})
	}
}

func TestIdentity_Stable(t *testing.T) {
	// Map iteration order is random; the result must not be.
	raw := map[string]any{
		"alpha": map[string]any{"userId": "111111"},
		"beta":  map[string]any{"profileId": "222222"},
	}
	first := Identity(raw)
	for i := 0; i < 20; i++ {
		if got := Identity(raw); got != first {
			t.Fatalf("Identity not stable: %+v vs %+v", got, first)
		}
	}
}

func TestScanTree_DepthBound(t *testing.T) {
	// Build a chain deeper than the scan limit with the id at the bottom.
	deep := map[string]any{"chatId": "999999"}
	var node any = deep
	for i := 0; i < maxScanDepth+2; i++ {
		node = map[string]any{"wrap": node}
	}
	if got := scanTree(node, 0); got != "" {
		t.Errorf("scanTree found %q beyond the depth bound", got)
	}

	// Within the bound it is found.
	shallow := map[string]any{"wrap": map[string]any{"chatId": "888888"}}
	if got := scanTree(shallow, 0); got != "888888" {
		t.Errorf("scanTree = %q, want 888888", got)
	}
}
