package llm

import (
	"fmt"

	"github.com/joseph-ayodele/cards-extractor/constants"
)

// SystemPrompt is sent as the system role on every field query.
const SystemPrompt = "You are a helpful assistant."

// BuildInstruction asks for exactly one field from the OCR text of a card.
func BuildInstruction(text string, field constants.FieldName) string {
	return fmt.Sprintf("Extract %s from the following text: %s, ensuring that you "+
		"return only the extracted data omitting field name, extra explanation or sentence, punctuation, or label, and "+
		"if you couldn't extract the data for any reason, just return '%s' with no extra wording or explanation. "+
		"For phone numbers and mobile numbers, only pick the first one for each.",
		field, text, constants.NotAvailable)
}
