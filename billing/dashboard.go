package billing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/generic"
)

// Dashboard is the at-a-glance summary for a reference day.
type Dashboard struct {
	ClientCount       int             `json:"client_count"`
	RevenueThisMonth  decimal.Decimal `json:"revenue_this_month"`
	UpcomingWorkCount int             `json:"upcoming_work_count"`
	Alerts            []Alert         `json:"alerts"`
}

// Summarize computes the dashboard. Revenue counts quantity * unitPrice of
// entries in today's calendar month; expenses are pass-through costs and
// are left out. Upcoming work counts entries dated today or later.
func Summarize(s Snapshot, today generic.Date) Dashboard {
	d := Dashboard{
		ClientCount:      len(s.Clients),
		RevenueThisMonth: decimal.Zero,
		Alerts:           ComputeAlerts(s.Clients, today),
	}
	for _, e := range s.WorkEntries {
		if e.Date.Year() == today.Year() && e.Date.Month() == today.Month() {
			d.RevenueThisMonth = d.RevenueThisMonth.Add(e.Quantity.Mul(e.UnitPrice))
		}
		if e.Date.AfterOrEqual(today) {
			d.UpcomingWorkCount++
		}
	}
	return d
}
