package question

import (
	"strings"
)

// FormatPrompt renders the fact pattern, stem, and labelled choices.
func FormatPrompt(item Question) string {
	var builder strings.Builder
	builder.WriteString(item.FactPattern)
	builder.WriteString("\n\n")
	builder.WriteString(item.Stem)
	builder.WriteString("\n\n")
	for _, choice := range item.Choices {
		builder.WriteString("(")
		builder.WriteString(string(choice.Label))
		builder.WriteString(") ")
		builder.WriteString(choice.Text)
		builder.WriteString("\n")
	}
	return builder.String()
}

// ParseLetter normalizes a model answer such as " b", "(C)" or "D." and
// reports whether it is one of A-D.
func ParseLetter(value string) (Letter, bool) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.Trim(trimmed, "().")
	letter := Letter(strings.ToUpper(strings.TrimSpace(trimmed)))
	if !letter.Valid() {
		return Unparseable, false
	}
	return letter, true
}
