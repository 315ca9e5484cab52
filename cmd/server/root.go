package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/billing-engine/config"
	"github.com/warp/billing-engine/logger"
)

var version = "1.0.0"

// Execute builds the command tree and runs it.
func Execute(cfg *config.Config) {
	if err := newRootCmd(cfg).Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Contractor billing engine",
		Long: `Billing periods, invoices, due dates, closing-day alerts and a work
schedule for independent contractors, served over HTTP or queried from the
command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")

	root.AddCommand(
		newServeCmd(cfg),
		newInvoiceCmd(cfg),
		newAlertsCmd(cfg),
		newScheduleCmd(cfg),
	)
	return root
}
