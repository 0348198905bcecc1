package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingTimeout time.Duration

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify the API key and model without checking a claim",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, logger, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		provider := p.Provider()
		if err := provider.IsAvailable(ctx); err != nil {
			return fmt.Errorf("%s/%s unavailable: %w", provider.Name(), provider.Model(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s/%s reachable at %s\n", provider.Name(), provider.Model(), provider.Endpoint())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 30*time.Second, "request timeout")
}
