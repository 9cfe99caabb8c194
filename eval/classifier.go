package eval

import "strings"

// Classifier turns a free-form judgment into an accept/reject decision.
// The interface exists so the keyword heuristic can be swapped for a
// structured judgment without touching the conversation engine.
type Classifier interface {
	Acceptable(judgment string) bool
}

// KeywordClassifier marks a judgment acceptable when any of its keywords
// appears in the lower-cased text.
type KeywordClassifier struct {
	Keywords []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		Keywords: []string{"yes", "acceptable", "appropriate", "good"},
	}
}

func (c *KeywordClassifier) Acceptable(judgment string) bool {
	lowered := strings.ToLower(judgment)
	for _, keyword := range c.Keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
