package verdict

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// RenderCitations renders a numbered markdown list of sources.
// It returns "" when there is nothing to cite.
func RenderCitations(citations []model.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n### Citations\n")
	for i, c := range citations {
		fmt.Fprintf(&b, "- [%d](%s) %s\n", i+1, c.URI, c.Title)
	}
	return b.String()
}

// RenderMarkdown prefixes the full response with the bolded verdict
func RenderMarkdown(v model.Verdict, fullResponse string) string {
	return fmt.Sprintf("**%s.** %s", v, fullResponse)
}
