package verdict

import (
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// affirmingTerms mark an answer as affirming the claim. Matching is plain
// case-insensitive substring search, so "untrue" also matches "true".
var affirmingTerms = []string{
	"true",
	"factually accurate",
	"verified",
}

// Classify derives the Yes/No verdict from the answer text
func Classify(text string) model.Verdict {
	lower := strings.ToLower(text)
	for _, term := range affirmingTerms {
		if strings.Contains(lower, term) {
			return model.VerdictYes
		}
	}
	return model.VerdictNo
}
