package domain

import "strings"

// Intent classifies what kind of answer a query is asking for.
// It selects the token budget and prompt shape used for distillation.
type Intent string

// Available intents.
const (
	// IntentSimple asks for a short factual answer.
	IntentSimple Intent = "simple"

	// IntentCodeExample asks for runnable code or a how-to.
	IntentCodeExample Intent = "code_example"

	// IntentComplex asks for an explanation or architectural overview.
	IntentComplex Intent = "complex"
)

// codeExampleIndicators are checked before complexIndicators,
// so a query matching both classifies as a code example.
var codeExampleIndicators = []string{
	"example", "code", "pattern", "how to", "implement",
	"snippet", "sample", "template", "show me", "write",
}

var complexIndicators = []string{
	"explain", "architecture", "design", "complex", "overview",
	"understand", "describe", "analyze", "compare", "difference",
}

// ClassifyQuery returns the intent of a natural-language query.
func ClassifyQuery(query string) Intent {
	q := strings.ToLower(query)
	if containsAny(q, codeExampleIndicators) {
		return IntentCodeExample
	}
	if containsAny(q, complexIndicators) {
		return IntentComplex
	}
	return IntentSimple
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentSimple, IntentCodeExample, IntentComplex:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// Description returns a human-readable description of the intent.
func (i Intent) Description() string {
	switch i {
	case IntentSimple:
		return "Simple (concise answer)"
	case IntentCodeExample:
		return "Code Example (runnable snippets)"
	case IntentComplex:
		return "Complex (detailed explanation)"
	default:
		return unknownDescription
	}
}
