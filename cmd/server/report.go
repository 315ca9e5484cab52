package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/config"
	"github.com/warp/billing-engine/generic"
	"github.com/warp/billing-engine/store/sqlite"
)

// openLedger opens the database read side for the reporting commands.
func openLedger(cfg *config.Config) (*sqlite.Store, *billing.Ledger, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, billing.NewLedger(billing.NewDocumentSnapshots(store)), nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, defaulting to today.
func parseDateFlag(v string) (generic.Date, error) {
	if v == "" {
		return generic.Today(), nil
	}
	return generic.ParseDate(v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// INVOICE
// =============================================================================

func newInvoiceCmd(cfg *config.Config) *cobra.Command {
	var (
		user, client, issue string
		year, month         int
	)
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Print the invoice for a client and billing month",
		Long: `Resolve the client's billing period for the month, aggregate the work
entries inside it and print the invoice with its due date as JSON.`,
		Example: `  server invoice --user alice --client acme-co --year 2024 --month 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issueDate, err := parseDateFlag(issue)
			if err != nil {
				return err
			}
			store, ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			inv, err := ledger.Invoice(cmd.Context(), generic.UserID(user), client, year, time.Month(month), issueDate)
			if err != nil {
				return err
			}
			if len(inv.Entries) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (%s)\n", billing.ErrNoBillableEntries, inv.Period)
			}
			return printJSON(cmd.OutOrStdout(), inv)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id")
	cmd.Flags().StringVar(&client, "client", "", "Client id")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Billing year")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "Billing month (1-12)")
	cmd.Flags().StringVar(&issue, "issue-date", "", "Issue date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

// =============================================================================
// ALERTS
// =============================================================================

func newAlertsCmd(cfg *config.Config) *cobra.Command {
	var user, today string
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List clients whose closing date is within five days",
		Example: `  server alerts --user alice --today 2024-03-22
  server alerts   # every user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDateFlag(today)
			if err != nil {
				return err
			}
			store, ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			users := []generic.UserID{generic.UserID(user)}
			if user == "" {
				if users, err = store.ListUsers(cmd.Context()); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, u := range users {
				alerts, err := ledger.Alerts(cmd.Context(), u, day)
				if err != nil {
					return err
				}
				for _, a := range alerts {
					fmt.Fprintf(out, "%s\t%s\t%s\t%d day(s)\n", u, a.Client.Name, a.ClosingDate, a.DaysRemaining)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id (default: all users)")
	cmd.Flags().StringVar(&today, "today", "", "Reference day YYYY-MM-DD (default today)")
	return cmd
}

// =============================================================================
// SCHEDULE
// =============================================================================

func newScheduleCmd(cfg *config.Config) *cobra.Command {
	var user, date, view string
	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Print a month, week or day view of work entries",
		Example: `  server schedule --user alice --date 2024-03-20 --view week`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			store, ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ix, err := ledger.Schedule(cmd.Context(), generic.UserID(user))
			if err != nil {
				return err
			}
			return writeSchedule(cmd.OutOrStdout(), ix, view, day)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id")
	cmd.Flags().StringVar(&date, "date", "", "Reference day YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&view, "view", "month", "month, week or day")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeSchedule(w io.Writer, ix *billing.ScheduleIndex, view string, day generic.Date) error {
	switch view {
	case "month":
		mv, err := ix.Month(day.Year(), day.Month())
		if err != nil {
			return err
		}
		for _, week := range mv.Weeks {
			for _, d := range week {
				if !d.InMonth || len(d.Entries) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s\t%d entr(ies)\n", d.Date, len(d.Entries))
			}
		}
	case "week":
		for _, d := range ix.Week(day).Days {
			for _, s := range d.Slots {
				fmt.Fprintf(w, "%s %s\t%s-%s\t%s\n", d.Date, d.Date.Weekday().String()[:3], s.Start, s.End, s.Entry.Description)
			}
		}
	case "day":
		for _, e := range ix.Day(day) {
			start := e.StartTime
			if start == "" {
				start = "--:--"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", start, e.Description, e.LineTotal())
		}
	default:
		return generic.NewValidationError("view", view, "must be month, week or day")
	}
	return nil
}
