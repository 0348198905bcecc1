package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	checkTimeout time.Duration
)

// errCheckFailed signals a failed check whose message was already printed
var errCheckFailed = errors.New("check failed")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Fact-check a single claim",
	Long: `Check sends one claim to the configured model with web search enabled and
prints the verdict, the explanation and the cited sources as markdown.

Rate-limited calls (HTTP 429) are retried with exponential backoff; any other
failure stops the check at once. Completed checks are appended to the history
record.

Example:
  groundcheck check "The Great Wall of China is visible from space."
  groundcheck check "Water boils at 100C at sea level." --json result.json
  groundcheck check "Cats can fly." --provider openai --model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&outJSON, "json", "", "also write the result as JSON to this path")
	checkCmd.Flags().StringVar(&outMD, "md", "", "also write the markdown to this path")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall timeout including backoff")
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	p, _, logger, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", claim)
		fmt.Fprintf(os.Stderr, "Backend:  %s/%s\n\n", p.Provider().Name(), p.Provider().Model())
	}

	result, err := p.Check(ctx, claim)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.UserMessage(err))
		if pipeline.KindOf(err) == pipeline.EmptyInput {
			return nil
		}
		return fmt.Errorf("%w: %s", errCheckFailed, pipeline.KindOf(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Markdown)

	renderer := pipeline.NewRenderer(true)
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	for i, link := range result.SourceChecks {
		switch {
		case link.Dead:
			fmt.Fprintf(os.Stderr, "Dead link [%d]: %s\n", i+1, link.URI)
		case link.Disallowed:
			fmt.Fprintf(os.Stderr, "Not probed [%d]: disallowed by robots.txt\n", i+1)
		}
	}
	fmt.Fprintf(os.Stderr, "History: %s\n", result.HistoryPath)
	return nil
}
