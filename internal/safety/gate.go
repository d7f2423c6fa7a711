// Package safety is the rule-based gate run on the resolved customer text
// before anything else may talk to a generation backend. It is stateless
// and deterministic: same text in, same verdict out.
package safety

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// rule is one entry of the ordered gate table. The first rule whose check
// matches produces the verdict.
type rule struct {
	name   string
	reason string
	check  func(text string) bool
}

var gateRules = []rule{
	{name: "minor_age_statement", reason: chat.ReasonMinor, check: minorAgeStatement},
	{name: "minor_keyword", reason: chat.ReasonMinor, check: minorKeyword},
	{name: "ki_check_code", reason: chat.ReasonKICheck, check: kiCheckTrap},
	{name: "disallowed_category", reason: chat.ReasonCategory, check: disallowedCategory},
}

// Check evaluates the gate table against the text. It never consults
// conversation history.
func Check(text string) chat.Verdict {
	t := strings.ToLower(text)
	for _, r := range gateRules {
		if r.check(t) {
			return chat.Verdict{Blocked: true, ReasonCode: r.reason, MatchedRule: r.name}
		}
	}
	return chat.Verdict{}
}

// agePhrasePattern catches first-person age statements with the number
// inline: "ich bin 15", "bin erst 16 jahre alt", "ich werde 17".
var agePhrasePattern = regexp.MustCompile(`\b(?:ich\s+bin|bin\s+erst|ich\s+werde|werde\s+bald)\s+(\d{1,2})\b`)

// ageNumberPattern finds any small number near an age context word.
var ageNumberPattern = regexp.MustCompile(`\b(\d{1,2})\s*(?:jahre|jahr|j\b|jährige)`)

// ageContextWindow is how close (in bytes) a bare number and an age word may
// sit and still count as one statement.
const ageContextWindow = 48

func minorAgeStatement(t string) bool {
	for _, m := range agePhrasePattern.FindAllStringSubmatch(t, -1) {
		if isMinorAge(m[1]) {
			return true
		}
	}
	for _, m := range ageNumberPattern.FindAllStringSubmatchIndex(t, -1) {
		num := t[m[2]:m[3]]
		if !isMinorAge(num) {
			continue
		}
		// Require a first-person marker inside the context window so plain
		// durations ("seit 12 jahren") do not trip the gate.
		start := m[0] - ageContextWindow
		if start < 0 {
			start = 0
		}
		window := t[start:m[0]]
		if strings.Contains(window, "ich") || strings.Contains(window, "bin") {
			return true
		}
	}
	return false
}

func isMinorAge(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 6 && n <= 17
}

var minorKeywords = []string{
	"minderjährig", "noch nicht 18", "unter 18", "nicht volljährig",
	"bin noch schüler", "gehe noch zur schule",
}

func minorKeyword(t string) bool {
	for _, kw := range minorKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// kiCheckTrap detects platform anti-automation probes: a request to repeat
// a code-shaped token, or the KI-check banner text pasted as a message.
var codeRequestPattern = regexp.MustCompile(`(?:schreib|tippe|wiederhole|antworte)\w*\s+(?:den\s+code|die\s+zahl|das\s+wort)\s+"?[a-z0-9]{3,8}"?`)

func kiCheckTrap(t string) bool {
	if strings.Contains(t, "ki-check") || strings.Contains(t, "ki check") ||
		strings.Contains(t, "sicherheitscode") || strings.Contains(t, "bist du ein bot") ||
		strings.Contains(t, "bist du eine ki") {
		return true
	}
	return codeRequestPattern.MatchString(t)
}

// disallowedCategories are named content categories the product refuses to
// engage with at all.
var disallowedCategories = []string{
	"vergewaltig", "kinderporno", "zoophilie", "inzest",
	"selbstmord", "suizid", "umbringen",
	"drogen verkaufen", "waffen verkaufen",
}

func disallowedCategory(t string) bool {
	for _, kw := range disallowedCategories {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
