package normalize

import (
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// catalogueEntry maps a system-notification kind to the banner phrases the
// platforms render for it. Matching is case-insensitive substring lookup —
// a fixed table, nothing learned.
type catalogueEntry struct {
	kind    chat.SystemKind
	phrases []string
}

var systemCatalogue = []catalogueEntry{
	{chat.SystemLike, []string{
		"hat dich geliked",
		"hat dein profil geliked",
		"gefällt dein profil",
		"hat dir ein like geschickt",
	}},
	{chat.SystemKiss, []string{
		"hat dir einen kuss geschickt",
		"hat dir einen kuss gesendet",
		"kuss erhalten",
	}},
	{chat.SystemFriendRequest, []string{
		"freundschaftsanfrage",
		"möchte mit dir befreundet sein",
		"will mit dir befreundet sein",
	}},
	{chat.SystemImageTransfer, []string{
		"bild wurde übertragen",
		"foto wurde übertragen",
		"bild übertragen",
	}},
	{chat.SystemKICheck, []string{
		"ki-check",
		"ki check",
		"bestätige mit dem code",
		"sicherheitscode",
	}},
	{chat.SystemCredits, []string{
		"nicht genügend credits",
		"nicht genug coins",
		"guthaben aufgebraucht",
	}},
}

// ClassifySystem returns the catalogue kind a message text matches, or
// SystemNone for an ordinary message.
func ClassifySystem(text string) chat.SystemKind {
	t := strings.ToLower(text)
	for _, entry := range systemCatalogue {
		for _, phrase := range entry.phrases {
			if strings.Contains(t, phrase) {
				return entry.kind
			}
		}
	}
	return chat.SystemNone
}
