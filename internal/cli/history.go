package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/history"
	"github.com/ppiankov/groundcheck/internal/model"
)

var (
	historyTail int
	historyPath bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past fact-check results",
	Long: `History prints rows from the CSV history record, oldest first.

Example:
  groundcheck history
  groundcheck history --tail 5
  groundcheck history --path`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyTail, "tail", 0, "show only the last N rows")
	historyCmd.Flags().BoolVar(&historyPath, "path", false, "print the record location and exit")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	h := history.NewLogger(cfg.History.Path, logger)
	out := cmd.OutOrStdout()

	if historyPath {
		fmt.Fprintln(out, h.Path())
		return nil
	}

	entries, err := h.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No checks recorded yet (%s)\n", h.Path())
		return nil
	}

	start := 0
	if historyTail > 0 && historyTail < len(entries) {
		start = len(entries) - historyTail
	}

	for i := start; i < len(entries); i++ {
		fmt.Fprintf(out, "#%d  %s\n", i+1, formatEntry(entries[i]))
	}
	fmt.Fprintf(out, "\n%d of %d rows from %s\n", len(entries)-start, len(entries), h.Path())
	return nil
}

// formatEntry renders a row as its verdict and the first line of the response
func formatEntry(e model.HistoryEntry) string {
	first, _, _ := strings.Cut(strings.TrimSpace(e.Response), "\n")
	if len([]rune(first)) > 100 {
		first = string([]rune(first)[:99]) + "…"
	}
	return fmt.Sprintf("%-3s %s", e.Status, first)
}
