package normalize

import (
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// convention describes how one platform serializes its message array.
type convention struct {
	// fixedOldestFirst platforms always ship oldest→newest; their
	// timestamps are unreliable and must never trigger a reversal.
	fixedOldestFirst bool
}

var conventions = map[chat.Platform]convention{
	chat.PlatformAmato:     {fixedOldestFirst: false},
	chat.PlatformFlirt24:   {fixedOldestFirst: true},
	chat.PlatformHerzblatt: {fixedOldestFirst: false},
}

// conventionFor resolves the ordering convention, falling back to Amato's
// (the most common integration) for unknown origins.
func conventionFor(p chat.Platform) convention {
	if c, ok := conventions[p]; ok {
		return c
	}
	return conventions[chat.PlatformAmato]
}

var platformTokens = []struct {
	token    string
	platform chat.Platform
}{
	{"amato", chat.PlatformAmato},
	{"flirt24", chat.PlatformFlirt24},
	{"herzblatt", chat.PlatformHerzblatt},
}

// DetectPlatform probes a prioritized set of signals: an explicit origin
// field, a platform id string, then a page URL substring. First match wins;
// unknown origin is a valid state.
func DetectPlatform(raw map[string]any) chat.Platform {
	for _, key := range []string{"origin", "originPlatform", "platform", "portal", "site"} {
		if p := matchPlatform(stringField(raw, key)); p != chat.PlatformUnknown {
			return p
		}
	}
	for _, key := range []string{"url", "pageUrl", "href", "location"} {
		if p := matchPlatform(stringField(raw, key)); p != chat.PlatformUnknown {
			return p
		}
	}
	return chat.PlatformUnknown
}

func matchPlatform(s string) chat.Platform {
	if s == "" {
		return chat.PlatformUnknown
	}
	s = strings.ToLower(s)
	for _, t := range platformTokens {
		if strings.Contains(s, t.token) {
			return t.platform
		}
	}
	return chat.PlatformUnknown
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
