// Package chat holds the data model shared across the reply pipeline.
// Everything here is created fresh per request and never mutated after
// construction.
package chat

import "time"

// Sender classifies who produced a message.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderOperator Sender = "operator"
	// SenderSystem covers platform banners (likes, kisses, friend requests,
	// KI-check codes, credit warnings). System messages are never candidates
	// for "the customer's message" but can drive phase classification.
	SenderSystem Sender = "system"
)

// Platform identifies which browser-extension integration produced the
// payload. Each platform serializes the same conversation differently.
type Platform string

const (
	PlatformUnknown   Platform = ""
	PlatformAmato     Platform = "amato"
	PlatformFlirt24   Platform = "flirt24"
	PlatformHerzblatt Platform = "herzblatt"
)

// SystemKind names the catalogue entry a System message matched.
type SystemKind string

const (
	SystemNone          SystemKind = ""
	SystemLike          SystemKind = "like"
	SystemKiss          SystemKind = "kiss"
	SystemFriendRequest SystemKind = "friend_request"
	SystemImageTransfer SystemKind = "image_transfer"
	SystemKICheck       SystemKind = "ki_check"
	SystemCredits       SystemKind = "credits"
)

// Message is one normalized chat message. RawIndex points back at the
// position in the inbound payload's message array.
type Message struct {
	Text       string
	Sender     Sender
	SystemKind SystemKind
	Timestamp  time.Time // zero when the platform gave none
	HasImage   bool
	RawIndex   int
}

// HasTimestamp reports whether the platform supplied a usable timestamp.
func (m Message) HasTimestamp() bool { return !m.Timestamp.IsZero() }

// Snapshot is the canonical view of one conversation, built once per
// request. Messages are ordered oldest→newest regardless of how the
// platform serialized them.
type Snapshot struct {
	Platform Platform
	Messages []Message
}

// LastOperator returns the newest operator message, if any.
func (s Snapshot) LastOperator() (Message, bool) { return s.lastBy(SenderOperator) }

// LastCustomer returns the newest customer message, if any.
func (s Snapshot) LastCustomer() (Message, bool) { return s.lastBy(SenderCustomer) }

func (s Snapshot) lastBy(sender Sender) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == sender {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// LastReal returns the newest non-System message, if any.
func (s Snapshot) LastReal() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender != SenderSystem {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Confidence grades how the current customer message was resolved.
type Confidence string

const (
	ConfidenceDefinite Confidence = "definite"
	ConfidenceFallback Confidence = "fallback"
	ConfidenceNone     Confidence = "none"
)

// ResolvedInput is the single canonical "current customer message".
type ResolvedInput struct {
	Text        string
	IsImageOnly bool
	// IsStale marks that the newest customer message was older than the
	// freshness window and used only because nothing fresher existed.
	IsStale    bool
	Confidence Confidence
}

// IdentitySource records where the conversation id was found.
type IdentitySource string

const (
	IdentityExplicitField IdentitySource = "explicit_field"
	IdentityURLPattern    IdentitySource = "url_pattern"
	IdentityRecursiveScan IdentitySource = "recursive_scan"
	IdentitySentinel      IdentitySource = "sentinel"
)

// Identity is the resolved conversation identifier.
type Identity struct {
	ID     string
	Source IdentitySource
}

// Phase selects the response mode for this request.
type Phase string

const (
	PhaseFirstContact  Phase = "first_contact"
	PhaseReactivation  Phase = "reactivation"
	PhaseFriendRequest Phase = "friend_request"
	PhaseImageReply    Phase = "image_reply"
	PhaseNormalReply   Phase = "normal_reply"
)

// Verdict is the safety gate's decision on the resolved customer text.
type Verdict struct {
	Blocked     bool
	ReasonCode  string
	MatchedRule string
}

// Safety gate reason codes.
const (
	ReasonMinor    = "minor"
	ReasonCategory = "category"
	ReasonKICheck  = "ki_check"
)

// RoutingContext is the immutable bundle handed to a generation strategy.
// Verdict is guaranteed non-blocked once a context is built.
type RoutingContext struct {
	Input    ResolvedInput
	Phase    Phase
	Identity Identity
	Snapshot Snapshot
	Verdict  Verdict
	// OperatorOfferedImage is set when the operator already offered to send
	// a picture, so image-reply prompts do not repeat the offer.
	OperatorOfferedImage bool
	Guidance             string
}

// Summary is the structured logbook delta produced by a collaborator and
// passed through to the caller untouched.
type Summary struct {
	User      map[string]any `json:"user"`
	Assistant map[string]any `json:"assistant"`
}
