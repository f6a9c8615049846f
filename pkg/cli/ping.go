package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/sqlbridge/pkg/bridge"
	"github.com/ekaya-inc/sqlbridge/pkg/retry"
)

var pingWait bool

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured database answers SELECT 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := bridge.New(loaded.Bridge(), bridge.WithLogger(rootLog))
		if err != nil {
			return err
		}
		defer func() { _ = d.Release(context.Background()) }()

		probe := func() error {
			_, err := d.TestConnection(ctx)
			return err
		}

		start := time.Now()
		if pingWait {
			// Keep probing through transient failures (server still
			// starting, connection refused) until it answers or the
			// retries run out. Permanent failures like bad credentials
			// still surface immediately.
			cfg := retry.DefaultConfig()
			cfg.MaxRetries = 30
			err = retry.DoIfRetryable(ctx, cfg, probe)
		} else {
			err = probe()
		}
		if err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}

		fmt.Printf("ok (%s)\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	pingCmd.Flags().BoolVar(&pingWait, "wait", false, "retry while the database is still starting up")
	rootCmd.AddCommand(pingCmd)
}
