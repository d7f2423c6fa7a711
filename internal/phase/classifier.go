// Package phase decides which response mode applies to a request. The
// classifier is an ordered rule table: the first matching predicate wins,
// and the order itself is a contract covered by tests.
package phase

import (
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// Facts is everything a phase predicate may look at. Computed once per
// request, never mutated.
type Facts struct {
	Snapshot chat.Snapshot
	Input    chat.ResolvedInput
}

type rule struct {
	phase chat.Phase
	match func(Facts) bool
}

// evaluation order is fixed: FriendRequest → Reactivation → ImageReply →
// FirstContact → NormalReply.
var rules = []rule{
	{chat.PhaseFriendRequest, isFriendRequest},
	{chat.PhaseReactivation, isReactivation},
	{chat.PhaseImageReply, isImageReply},
	{chat.PhaseFirstContact, isFirstContact},
	{chat.PhaseNormalReply, func(Facts) bool { return true }},
}

// Classify runs the rule table and returns the first matching phase.
func Classify(snap chat.Snapshot, input chat.ResolvedInput) chat.Phase {
	f := Facts{Snapshot: snap, Input: input}
	for _, r := range rules {
		if r.match(f) {
			return r.phase
		}
	}
	return chat.PhaseNormalReply
}

// socialKinds are the system notifications that represent a social overture
// (like, kiss, friend request) and route to the thank-you + opener path.
var socialKinds = map[chat.SystemKind]bool{
	chat.SystemLike:          true,
	chat.SystemKiss:          true,
	chat.SystemFriendRequest: true,
}

var friendPhrases = []string{
	"freunde sein",
	"befreundet sein",
	"freundschaft schließen",
	"mein freund sein",
	"meine freundin sein",
}

// isFriendRequest matches when the newest relevant event is a social system
// notification not yet superseded by a real customer message, or when the
// fresh customer text itself asks to be friends.
func isFriendRequest(f Facts) bool {
	if f.Input.Confidence == chat.ConfidenceDefinite && !f.Input.IsImageOnly {
		t := strings.ToLower(f.Input.Text)
		for _, p := range friendPhrases {
			if strings.Contains(t, p) {
				return true
			}
		}
	}

	msgs := f.Snapshot.Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Sender == chat.SenderCustomer {
			return false // a real customer message supersedes the notification
		}
		if m.Sender == chat.SenderSystem && socialKinds[m.SystemKind] {
			return true
		}
	}
	return false
}

// isReactivation matches when the operator spoke last and had spoken before:
// the customer has gone silent since the operator's last turn. A bare
// like/kiss notification never lands here — without a prior operator message
// no conversation has started, and the FriendRequest rule fires first anyway.
func isReactivation(f Facts) bool {
	if _, ok := f.Snapshot.LastOperator(); !ok {
		return false
	}
	last, ok := f.Snapshot.LastReal()
	return ok && last.Sender == chat.SenderOperator
}

func isImageReply(f Facts) bool {
	return f.Input.IsImageOnly
}

// isFirstContact matches a conversation that is literally empty except
// possibly for system notifications.
func isFirstContact(f Facts) bool {
	for _, m := range f.Snapshot.Messages {
		if m.Sender != chat.SenderSystem {
			return false
		}
	}
	return f.Input.Confidence != chat.ConfidenceDefinite
}
