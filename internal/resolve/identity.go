package resolve

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// SentinelID is returned when no real conversation id can be found. It is
// a fixed, id-shaped value so the caller never reloads its UI because of an
// apparently-changing identifier.
const SentinelID = "0000000000"

// maxScanDepth bounds the recursive object scan.
const maxScanDepth = 5

var explicitIDKeys = []string{
	"chatId", "chat_id", "conversationId", "conversation_id",
	"dialogId", "dialog_id", "cid", "threadId",
}

var profileKeys = []string{"profile", "customer", "user", "client"}

var idShapedPattern = regexp.MustCompile(`\b\d{6,12}\b`)

// keyedIDPattern only accepts numbers tied to an id-ish key in the
// serialized payload, never arbitrary numbers.
var keyedIDPattern = regexp.MustCompile(`"(?:[a-zA-Z]*[iI]d)":\s*"?(\d{4,20})"?`)

var urlIDParams = []string{"chat", "dialog", "conversation", "chatId", "dialogId", "id"}

var urlPathPattern = regexp.MustCompile(`/(?:chat|dialog|conversation)s?/(\d{4,20})`)

// Identity derives a stable conversation identifier from the raw payload.
// The cascade runs from the most to the least explicit location and falls
// back to the sentinel only when nothing id-shaped exists anywhere.
func Identity(raw map[string]any) chat.Identity {
	for _, key := range explicitIDKeys {
		if id := idValue(raw[key]); id != "" {
			return chat.Identity{ID: id, Source: chat.IdentityExplicitField}
		}
	}

	for _, key := range profileKeys {
		if nested, ok := raw[key].(map[string]any); ok {
			for _, idKey := range []string{"id", "userId", "profileId", "chatId"} {
				if id := idValue(nested[idKey]); id != "" {
					return chat.Identity{ID: id, Source: chat.IdentityExplicitField}
				}
			}
		}
	}

	if id := scanSerialized(raw); id != "" {
		return chat.Identity{ID: id, Source: chat.IdentityRecursiveScan}
	}

	if id := fromURL(raw); id != "" {
		return chat.Identity{ID: id, Source: chat.IdentityURLPattern}
	}

	if id := scanTree(raw, 0); id != "" {
		return chat.Identity{ID: id, Source: chat.IdentityRecursiveScan}
	}

	return chat.Identity{ID: SentinelID, Source: chat.IdentitySentinel}
}

// idValue accepts strings of digits and positive integral numbers; anything
// else is not id-shaped.
func idValue(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s != "" && isDigits(s) {
			return s
		}
	case float64:
		if t > 0 && t == math.Trunc(t) && t < 1e18 {
			return strconv.FormatInt(int64(t), 10)
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// scanSerialized looks for an id-shaped number in fields whose name suggests
// an identifier, via a regex over the serialized payload. Serializing keeps
// the probe independent of how deeply the integration nested the field.
func scanSerialized(raw map[string]any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	if m := keyedIDPattern.FindSubmatch(b); m != nil {
		return string(m[1])
	}
	return ""
}

func fromURL(raw map[string]any) string {
	for _, key := range []string{"url", "pageUrl", "href", "location"} {
		s, _ := raw[key].(string)
		if s == "" {
			continue
		}
		if m := urlPathPattern.FindStringSubmatch(s); m != nil {
			return m[1]
		}
		if u, err := url.Parse(s); err == nil {
			q := u.Query()
			for _, param := range urlIDParams {
				if v := q.Get(param); v != "" && isDigits(v) {
					return v
				}
			}
		}
		if m := idShapedPattern.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

// scanTree is a bounded-depth, side-effect-free search for any id-shaped
// value under a key containing "id". Map iteration order is randomized, so
// the smallest qualifying key is chosen to keep the result re-derivable.
func scanTree(node any, depth int) string {
	if depth > maxScanDepth {
		return ""
	}
	switch t := node.(type) {
	case map[string]any:
		best := ""
		for k, v := range t {
			if strings.Contains(strings.ToLower(k), "id") {
				if id := idValue(v); id != "" && (best == "" || k < best) {
					best = k
				}
			}
		}
		if best != "" {
			return idValue(t[best])
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if id := scanTree(t[k], depth+1); id != "" {
				return id
			}
		}
	case []any:
		for _, v := range t {
			if id := scanTree(v, depth+1); id != "" {
				return id
			}
		}
	}
	return ""
}
