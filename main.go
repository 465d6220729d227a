package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"financehub/internal/config"
	"financehub/internal/logger"
)

func main() {
	var (
		debug       bool
		asJSON      bool
		metricsFile string
		a           *app
	)

	rootCmd := &cobra.Command{
		Use:   "financehub",
		Short: "Fetch account balances from Plaid and summarize them",
		Long: `financehub fetches real-time balances for every configured institution,
sums them into checking and credit totals and prints a report headed by
the current date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(debug)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if metricsFile != "" {
				cfg.MetricsFile = metricsFile
			}
			a = newApp(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd.Context(), cmd.OutOrStdout())
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Fetch and print account balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBalances(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}
	balancesCmd.Flags().BoolVar(&asJSON, "json", false, "Print accounts as a JSON document")

	timeCmd := &cobra.Command{
		Use:   "time",
		Short: "Print the current date for the configured time zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTime(cmd.Context(), cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(timeCmd)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("command failed")
		cancel()
		os.Exit(1)
	}
}
