package llm

import (
	"fmt"
	"strings"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

const systemPrompt = `You are TaxPilot, a friendly tax filing assistant. You will be given a draft response that contains the authoritative facts and figures. Rephrase the draft in a warm, conversational tone.

Rules:
- Keep every dollar amount, percentage, and filing status from the draft exactly as written.
- Do not add tax advice that is not in the draft.
- Do not mention that you were given a draft.
- Keep any markdown formatting from the draft.`

// replyPrompt builds the user prompt for a rephrase request.
func replyPrompt(session *model.Session, utterance, fallback string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversation stage: %s\n", session.Stage)
	if session.HasFilingStatus() {
		fmt.Fprintf(&b, "Filing status: %s\n", session.FilingStatus.Label())
	}
	if session.HasIncome() {
		fmt.Fprintf(&b, "Reported income: $%.2f\n", session.CumulativeIncome)
	}

	fmt.Fprintf(&b, "\nUser said: %q\n", utterance)
	fmt.Fprintf(&b, "\nDraft response:\n%s\n", fallback)
	b.WriteString("\nRephrase the draft response.")

	return b.String()
}
