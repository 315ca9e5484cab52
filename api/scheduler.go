/*
scheduler.go - Automated closing-day alert scheduler

PURPOSE:
  Periodically scans every stored user for clients whose closing date is
  within the alert window and reports them, at most once per user per day.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Lists users from the document store
  - Skips users already reported for the reference day
  - Records each run in alert_runs for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAlertScheduler(store, handler.Ledger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ListAlerts and ListAlertRuns endpoints
  - billing/alerts.go: ComputeAlerts
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
	"github.com/warp/billing-engine/logger"
	"github.com/warp/billing-engine/store/sqlite"
)

// AlertScheduler reports closing-day alerts in the background.
type AlertScheduler struct {
	Store         *sqlite.Store
	Ledger        *billing.Ledger
	CheckInterval time.Duration
	Enabled       bool
	Today         func() generic.Date

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// ScanResult summarises one pass over the users.
type ScanResult struct {
	Notified int
	Quiet    int
	Skipped  int
}

// NewAlertScheduler creates a new scheduler.
func NewAlertScheduler(store *sqlite.Store, ledger *billing.Ledger) *AlertScheduler {
	return &AlertScheduler{
		Store:         store,
		Ledger:        ledger,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Today:         generic.Today,
		log:           logger.WithComponent("scheduler"),
	}
}

// Start begins the scheduler.
func (as *AlertScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.log.Info().Msg("disabled, not starting")
		return
	}
	if as.ticker != nil {
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.stop = make(chan struct{})
	as.wg.Add(1)
	go as.run()

	as.log.Info().Dur("interval", as.CheckInterval).Msg("started")
}

// Stop stops the scheduler.
func (as *AlertScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		as.ticker = nil
		as.log.Info().Msg("stopped")
	}
}

func (as *AlertScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.RunNow(context.Background())

	for {
		select {
		case <-as.ticker.C:
			as.RunNow(context.Background())
		case <-as.stop:
			return
		}
	}
}

// RunNow performs one scan for the current reference day.
func (as *AlertScheduler) RunNow(ctx context.Context) ScanResult {
	today := as.Today()
	var result ScanResult

	users, err := as.Store.ListUsers(ctx)
	if err != nil {
		as.log.Error().Err(err).Msg("listing users")
		return result
	}

	for _, user := range users {
		done, err := as.Store.HasAlertRun(ctx, user, today)
		if err != nil {
			as.log.Error().Err(err).Str("user_id", string(user)).Msg("checking alert run")
			continue
		}
		if done {
			result.Skipped++
			continue
		}

		alerts, err := as.Ledger.Alerts(ctx, user, today)
		if err != nil {
			as.log.Error().Err(err).Str("user_id", string(user)).Msg("computing alerts")
			continue
		}

		userLog := logger.WithUserID(as.log, string(user))
		for _, a := range alerts {
			userLog.Warn().
				Str("client_id", a.Client.ID).
				Str("client", a.Client.Name).
				Str("closing_date", a.ClosingDate.Key()).
				Int("days_remaining", a.DaysRemaining).
				Msg("closing date approaching")
		}

		err = as.Store.SaveAlertRun(ctx, sqlite.AlertRun{
			ID:         uuid.NewString(),
			UserID:     user,
			RunDate:    today,
			AlertCount: len(alerts),
			ClientIDs:  lo.Map(alerts, func(a billing.Alert, _ int) string { return a.Client.ID }),
		})
		if errors.Is(err, sqlite.ErrAlertRunExists) {
			result.Skipped++
			continue
		}
		if err != nil {
			userLog.Error().Err(err).Msg("recording alert run")
			continue
		}

		if len(alerts) > 0 {
			result.Notified++
		} else {
			result.Quiet++
		}
	}

	if result.Notified > 0 || result.Skipped > 0 {
		as.log.Info().
			Str("date", today.Key()).
			Int("notified", result.Notified).
			Int("quiet", result.Quiet).
			Int("skipped", result.Skipped).
			Msg("scan completed")
	}
	return result
}
