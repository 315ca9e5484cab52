/*
alerts.go - Closing-day alert engine

PURPOSE:
  Scans all clients against a reference day and reports the ones whose next
  closing date falls within AlertHorizonDays. Drives the dashboard warning.

ALGORITHM (per client):
  1. closing = ClosingDate(closingDay, today's year, today's month)
       99 -> last day of today's month
       d  -> d-th of today's month, carried forward when the month is short
  2. if closing < today (already passed), advance one cycle:
       99 -> RollDate(year, month+2, 0)   (last day of next month)
       d  -> RollDate(year, month+1, d)
  3. daysRemaining = whole days from today to closing
  4. keep 0 <= daysRemaining <= AlertHorizonDays

  Results are stable-sorted by daysRemaining; ties keep client order.
  Clients with an invalid closing day are skipped, never reported as errors.
*/
package billing

import (
	"sort"

	"github.com/warp/billing-engine/generic"
)

// AlertHorizonDays is how far ahead a closing day raises an alert.
const AlertHorizonDays = 5

// Alert flags a client whose closing date is imminent.
type Alert struct {
	Client        Client       `json:"client"`
	ClosingDate   generic.Date `json:"closing_date"`
	DaysRemaining int          `json:"days_remaining"`
}

// NextClosingDate returns the first closing date on or after today.
func NextClosingDate(closingDay ClosingDay, today generic.Date) generic.Date {
	year, month := today.Year(), today.Month()
	closing := ClosingDate(closingDay, year, month)
	if closing.Before(today) {
		if closingDay.IsEndOfMonth() {
			closing = generic.RollDate(year, month+2, 0)
		} else {
			closing = generic.RollDate(year, month+1, int(closingDay))
		}
	}
	return closing
}

// ComputeAlerts returns alerts for clients closing within the horizon.
// The result is never nil.
func ComputeAlerts(clients []Client, today generic.Date) []Alert {
	today = generic.DateOf(today.Time)
	alerts := []Alert{}
	for _, c := range clients {
		if c.ClosingDay.Validate() != nil {
			continue
		}
		closing := NextClosingDate(c.ClosingDay, today)
		days := generic.DaysBetween(today, closing)
		if days < 0 || days > AlertHorizonDays {
			continue
		}
		alerts = append(alerts, Alert{Client: c, ClosingDate: closing, DaysRemaining: days})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysRemaining < alerts[j].DaysRemaining
	})
	return alerts
}
