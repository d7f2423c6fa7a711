// Package validate checks generated replies against the hard output
// constraints. Each rule is independently testable; the retry loop that
// re-invokes generation lives in the engine and is capped at MaxAttempts.
package validate

import (
	"regexp"
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// MaxAttempts is the total number of generation attempts for one request
// (1 initial + 2 retries).
const MaxAttempts = 3

// MinReplyLength is the shortest acceptable reply in bytes.
const MinReplyLength = 40

// Violation names, surfaced verbatim in retry hints and diagnostic flags.
const (
	ViolationForbiddenPhrase   = "forbidden_phrase"
	ViolationMeetingCommitment = "meeting_commitment"
	ViolationTooShort          = "too_short"
	ViolationNoQuestion        = "no_question"
)

// questionPhases are the phases whose reply must end on a question to keep
// the conversation going. An image reaction may be a plain compliment.
var questionPhases = map[chat.Phase]bool{
	chat.PhaseFirstContact: true,
	chat.PhaseReactivation: true,
	chat.PhaseNormalReply:  true,
}

// Check returns every rule the text violates, in stable order. An empty
// result means the text is acceptable for the phase.
func Check(text string, ph chat.Phase, forbidden []string) []string {
	var out []string
	if phrase := matchForbidden(text, forbidden); phrase != "" {
		out = append(out, ViolationForbiddenPhrase)
	}
	if hasMeetingCommitment(text) {
		out = append(out, ViolationMeetingCommitment)
	}
	if len(strings.TrimSpace(text)) < MinReplyLength {
		out = append(out, ViolationTooShort)
	}
	if questionPhases[ph] && !hasClosingQuestion(text) {
		out = append(out, ViolationNoQuestion)
	}
	return out
}

// MatchedForbidden reports which forbidden phrase the text contains, for
// retry hints. Empty when clean.
func MatchedForbidden(text string, forbidden []string) string {
	return matchForbidden(text, forbidden)
}

// matchForbidden matches a phrase literally, or by stem so that simple
// inflection variants ("treffen" → "treffe", "triffst" stays separate) are
// caught without a morphology engine.
func matchForbidden(text string, forbidden []string) string {
	t := strings.ToLower(text)
	for _, phrase := range forbidden {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" {
			continue
		}
		if strings.Contains(t, p) {
			return phrase
		}
		if stem := stemOf(p); stem != p && strings.Contains(t, stem) {
			return phrase
		}
	}
	return ""
}

// stemOf strips a trailing inflection suffix from single-word phrases.
func stemOf(p string) string {
	if strings.ContainsRune(p, ' ') {
		return p
	}
	for _, suffix := range []string{"en", "st", "e", "n", "t"} {
		if strings.HasSuffix(p, suffix) && len(p)-len(suffix) >= 4 {
			return p[:len(p)-len(suffix)]
		}
	}
	return p
}

var weekdayPattern = regexp.MustCompile(`\b(?:montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag)\b`)

var timePattern = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*uhr\b`)

var meetVerbPattern = regexp.MustCompile(`\b(?:treffen|treffe|sehen wir uns|komm vorbei|komme vorbei|hole dich ab)\b`)

// conditional markers make a meeting mention hypothetical rather than a
// commitment.
var conditionalMarkers = []string{
	"würde", "könnte", "vielleicht", "irgendwann", "wäre", "stell dir vor",
	"eines tages", "falls", "wenn wir uns mal",
}

// hasMeetingCommitment detects a concrete proposal or agreement to meet:
// a meeting verb together with a day or clock time in the same sentence,
// with no conditional marker softening it. Merely discussing the idea of
// meeting is allowed.
func hasMeetingCommitment(text string) bool {
	t := strings.ToLower(text)
	for _, sentence := range splitSentences(t) {
		if !meetVerbPattern.MatchString(sentence) {
			continue
		}
		if !weekdayPattern.MatchString(sentence) && !timePattern.MatchString(sentence) &&
			!strings.Contains(sentence, "morgen") && !strings.Contains(sentence, "heute") {
			continue
		}
		if containsAny(sentence, conditionalMarkers) {
			continue
		}
		return true
	}
	return false
}

func splitSentences(t string) []string {
	return strings.FieldsFunc(t, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasClosingQuestion requires a question mark in the closing stretch of the
// reply, tolerating a trailing emoji or smiley after it.
func hasClosingQuestion(text string) bool {
	t := strings.TrimSpace(text)
	idx := strings.LastIndex(t, "?")
	if idx < 0 {
		return false
	}
	return len(t)-idx <= 12
}

// Hint renders violations as an instruction for the next generation attempt,
// naming the specific mistake so it is less likely to repeat.
func Hint(violations []string, matchedPhrase string) string {
	if len(violations) == 0 {
		return ""
	}
	var parts []string
	for _, v := range violations {
		switch v {
		case ViolationForbiddenPhrase:
			if matchedPhrase != "" {
				parts = append(parts, "Benutze auf keinen Fall die Formulierung \""+matchedPhrase+"\".")
			} else {
				parts = append(parts, "Die Antwort enthielt eine verbotene Formulierung.")
			}
		case ViolationMeetingCommitment:
			parts = append(parts, "Vereinbare kein konkretes Treffen (kein Tag, keine Uhrzeit, kein Ort).")
		case ViolationTooShort:
			parts = append(parts, "Die Antwort war zu kurz, schreibe ausführlicher.")
		case ViolationNoQuestion:
			parts = append(parts, "Beende die Antwort mit einer Frage an den Kunden.")
		}
	}
	return strings.Join(parts, " ")
}
