package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/pipeline"
	"github.com/ppiankov/groundcheck/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check multiple claims from a file in parallel",
	Long: `Batch checks every claim in a file concurrently:
- One claim per line; blank lines and lines starting with # are skipped
- Repeated claims are checked once
- Requests are spaced by the configured rate limit
- Every completed check is appended to the shared history record
- Optionally writes a JSON and Markdown result per claim

Example:
  groundcheck batch claims.txt
  groundcheck batch claims.txt --concurrency 4 --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write per-claim JSON and Markdown results here")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	p, cfg, logger, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	workers := cfg.Concurrency.Workers
	if concurrency > 0 {
		workers = concurrency
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Groundcheck Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Backend:      %s/%s\n", p.Provider().Name(), p.Provider().Model())
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  History:      %s\n", p.History().Path())
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(true)
	successCount := 0
	failureCount := 0

	for _, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", res.Claim, pipeline.UserMessage(res.Error))
			continue
		}
		successCount++
		renderer.RenderSummary(cmd.OutOrStdout(), res.Result)

		if outputDir == "" {
			continue
		}
		slug := fmt.Sprintf("%03d-%s", res.Index+1, sanitizeFilename(res.Claim))
		if err := renderer.RenderJSON(res.Result, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", res.Claim, err)
		}
		if err := renderer.RenderMarkdown(res.Result, filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", res.Claim, err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("%w: all %d claims failed", errCheckFailed, failureCount)
	}
	return nil
}

// sanitizeFilename turns a claim into a short file name
func sanitizeFilename(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "claim"
	}
	return out
}
