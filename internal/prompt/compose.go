// Package prompt turns an Inquiry into the single question string sent upstream.
package prompt

import (
	"strings"

	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
)

const defaultRole = "user"

// Compose renders the question, the details block and the conversation transcript.
// The output depends only on the inquiry.
func Compose(inq models.Inquiry) string {
	var b strings.Builder
	b.WriteString(inq.Question)
	writeDetails(&b, inq.Details)
	writeHistory(&b, inq.History)
	return b.String()
}

func writeDetails(b *strings.Builder, d *models.Details) {
	if d == nil {
		return
	}
	b.WriteString("\n\nDetails:")
	line(b, "SMS Type", d.SMSType)
	line(b, "Use Case", d.UseCase)
	line(b, "Business Presence", d.BusinessPresence)
	line(b, "Timeline", d.Timeline)
	line(b, "Expected Volume", d.Volume)
	line(b, "Voice Required", d.VoiceRequired)
	line(b, "Selected Countries", strings.Join(d.SelectedCountries, ", "))
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("\n- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func writeHistory(b *strings.Builder, history []models.Turn) {
	if len(history) == 0 {
		return
	}
	b.WriteString("\n\nConversation so far:")
	for _, turn := range history {
		role, content := defaultRole, ""
		if turn.Role != nil {
			role = *turn.Role
		}
		if turn.Content != nil {
			content = *turn.Content
		}
		b.WriteString("\n")
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(content)
	}
}
