package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/pipeline"
)

// interactiveCmd represents the interactive command
var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Check claims typed one per line",
	Long: `Interactive reads claims from standard input, one per line, and checks
them one at a time. An empty line prints the input prompt again. End input
(Ctrl-D) or interrupt (Ctrl-C) to quit.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	p, _, logger, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return repl(ctx, p, cmd.InOrStdin(), cmd.OutOrStdout())
}

// repl runs one check per input line until in is exhausted or ctx ends
func repl(ctx context.Context, p *pipeline.Pipeline, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, "claim> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		_, markdown, historyPath := p.CheckClaim(ctx, scanner.Text())
		fmt.Fprintln(out, markdown)
		if historyPath != "" {
			fmt.Fprintf(out, "\n(logged to %s)\n", historyPath)
		}
		fmt.Fprint(out, "\nclaim> ")
	}
	fmt.Fprintln(out)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
