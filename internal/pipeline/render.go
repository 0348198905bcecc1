package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Renderer writes check results to files and terminals
type Renderer struct {
	includeClaim bool
}

// NewRenderer creates a renderer. includeClaim adds the claim as a heading
// to markdown output.
func NewRenderer(includeClaim bool) *Renderer {
	return &Renderer{includeClaim: includeClaim}
}

// RenderJSON writes the full result as indented JSON
func (r *Renderer) RenderJSON(result *model.CheckResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the verdict markdown
func (r *Renderer) RenderMarkdown(result *model.CheckResult, path string) error {
	return writeFile(path, []byte(r.Markdown(result)))
}

// Markdown returns the document RenderMarkdown writes
func (r *Renderer) Markdown(result *model.CheckResult) string {
	var b strings.Builder
	if r.includeClaim {
		fmt.Fprintf(&b, "# %s\n\n", result.Claim)
	}
	b.WriteString(result.Markdown)
	if !strings.HasSuffix(result.Markdown, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSummary prints a short verdict line
func (r *Renderer) RenderSummary(w io.Writer, result *model.CheckResult) {
	source := ""
	if result.Cached {
		source = ", cached"
	}
	if dead := deadLinks(result.SourceChecks); dead > 0 {
		source += fmt.Sprintf(", %d dead links", dead)
	}
	fmt.Fprintf(w, "%s  %s (%d citations%s)\n", verdictMark(result.Verdict), truncate(result.Claim, 70), len(result.Citations), source)
}

func deadLinks(checks []model.LinkStatus) int {
	n := 0
	for _, c := range checks {
		if c.Dead {
			n++
		}
	}
	return n
}

func verdictMark(v model.Verdict) string {
	if v == model.VerdictYes {
		return "✓ Yes"
	}
	return "✗ No "
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
