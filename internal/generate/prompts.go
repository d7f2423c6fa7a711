package generate

import (
	"strings"

	"github.com/nniicckk78/chatai-backend-sub001/internal/chat"
)

// historyLimit caps how many trailing messages go into the prompt.
const historyLimit = 20

const basePrompt = `Du schreibst als Moderatorin auf einer deutschen Dating-Plattform im Namen eines Profils.
Antworte natürlich, warm und auf Deutsch, in der Du-Form.
Gib nur den Nachrichtentext aus, ohne Anführungszeichen und ohne Erklärungen.
Vereinbare niemals ein konkretes Treffen und gib niemals Kontaktdaten weiter.`

var phaseInstructions = map[chat.Phase]string{
	chat.PhaseFirstContact:  `Es gibt noch keine Unterhaltung. Schreibe eine neugierig machende erste Nachricht und beende sie mit einer Frage.`,
	chat.PhaseReactivation:  `Der Kunde hat auf die letzte Nachricht nicht geantwortet. Schreibe eine lockere Nachricht, die das Gespräch wiederbelebt, ohne Druck zu machen, und beende sie mit einer Frage.`,
	chat.PhaseFriendRequest: `Der Kunde hat ein Like, einen Kuss oder eine Freundschaftsanfrage geschickt. Bedanke dich charmant und eröffne das Gespräch mit einer Frage.`,
	chat.PhaseImageReply:    `Der Kunde hat ein Bild geschickt. Reagiere charmant auf das Bild.`,
	chat.PhaseNormalReply:   `Antworte auf die aktuelle Nachricht des Kunden und halte das Gespräch mit einer Frage am Laufen.`,
}

func systemPrompt(ph chat.Phase, guidance string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(phaseInstructions[ph])
	if guidance != "" {
		b.WriteString("\n\nZusätzliche Hinweise:\n")
		b.WriteString(guidance)
	}
	return b.String()
}

func userPrompt(rc chat.RoutingContext, retryHint string) string {
	var b strings.Builder

	if history := renderHistory(rc.Snapshot); history != "" {
		b.WriteString("Bisheriger Chatverlauf:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	if rc.Input.Text != "" && !rc.Input.IsImageOnly {
		b.WriteString("Aktuelle Nachricht des Kunden:\n")
		b.WriteString(rc.Input.Text)
		b.WriteString("\n")
	}
	if rc.Input.IsImageOnly {
		b.WriteString("Der Kunde hat soeben ein Bild ohne Text geschickt.\n")
	}
	if rc.OperatorOfferedImage {
		b.WriteString("Du hast bereits angeboten, ein Bild zu schicken. Biete es nicht erneut an.\n")
	}
	if retryHint != "" {
		b.WriteString("\nWICHTIG, dein vorheriger Versuch wurde abgelehnt: ")
		b.WriteString(retryHint)
		b.WriteString("\n")
	}

	b.WriteString("\nSchreibe jetzt deine Antwort.")
	return b.String()
}

func renderHistory(snap chat.Snapshot) string {
	msgs := snap.Messages
	if len(msgs) > historyLimit {
		msgs = msgs[len(msgs)-historyLimit:]
	}
	var b strings.Builder
	for _, m := range msgs {
		if m.Sender == chat.SenderSystem {
			continue
		}
		switch m.Sender {
		case chat.SenderCustomer:
			b.WriteString("Kunde: ")
		case chat.SenderOperator:
			b.WriteString("Du: ")
		}
		if m.Text != "" {
			b.WriteString(m.Text)
		} else if m.HasImage {
			b.WriteString("[Bild]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

const summaryPrompt = `Du extrahierst Logbuch-Daten aus einem Dating-Chat.
Gib NUR valides JSON im Format {"user": {...}, "assistant": {...}} aus.
"user" enthält neue Fakten über den Kunden (Name, Alter, Stadt, Beruf, Hobbys),
"assistant" neue Fakten über das Profil. Lasse unbekannte Felder weg.
Kein Text außerhalb des JSON.`
