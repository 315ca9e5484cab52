package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
)

func client(id string, closingDay billing.ClosingDay) billing.Client {
	return billing.Client{ID: id, Name: id, ClosingDay: closingDay}
}

func TestComputeAlerts_WithinHorizon(t *testing.T) {
	// GIVEN a Friday with clients closing at different distances
	today := date(2024, 3, 22)
	clients := []billing.Client{
		client("in-3-days", 25),
		client("next-month", 10),
		client("month-end", billing.EndOfMonth),
		client("today", 22),
		client("in-5-days", 27),
		client("in-6-days", 28),
	}

	// WHEN computing alerts
	alerts := billing.ComputeAlerts(clients, today)

	// THEN only 0..5 days ahead are reported, nearest first
	require.Len(t, alerts, 3)
	assert.Equal(t, "today", alerts[0].Client.ID)
	assert.Equal(t, 0, alerts[0].DaysRemaining)
	assert.Equal(t, "in-3-days", alerts[1].Client.ID)
	assert.Equal(t, 3, alerts[1].DaysRemaining)
	assert.Equal(t, "2024-03-25", alerts[1].ClosingDate.Key())
	assert.Equal(t, "in-5-days", alerts[2].Client.ID)
	assert.Equal(t, 5, alerts[2].DaysRemaining)
}

func TestComputeAlerts_PassedClosingRollsToNextMonth(t *testing.T) {
	today := date(2024, 3, 29)

	alerts := billing.ComputeAlerts([]billing.Client{client("early", 2), client("mid", 10)}, today)

	require.Len(t, alerts, 1)
	assert.Equal(t, "early", alerts[0].Client.ID)
	assert.Equal(t, "2024-04-02", alerts[0].ClosingDate.Key())
	assert.Equal(t, 4, alerts[0].DaysRemaining)
}

func TestComputeAlerts_EndOfMonth(t *testing.T) {
	alerts := billing.ComputeAlerts([]billing.Client{client("eom", billing.EndOfMonth)}, date(2024, 2, 26))

	require.Len(t, alerts, 1)
	assert.Equal(t, "2024-02-29", alerts[0].ClosingDate.Key())
	assert.Equal(t, 3, alerts[0].DaysRemaining)
}

func TestComputeAlerts_ShortMonthCarriesForward(t *testing.T) {
	// Closing day 31 in February lands on March 2 (2024 is a leap year)
	alerts := billing.ComputeAlerts([]billing.Client{client("c31", 31)}, date(2024, 2, 28))

	require.Len(t, alerts, 1)
	assert.Equal(t, "2024-03-02", alerts[0].ClosingDate.Key())
	assert.Equal(t, 3, alerts[0].DaysRemaining)
}

func TestComputeAlerts_SkipsInvalidClosingDay(t *testing.T) {
	clients := []billing.Client{client("broken", 0), client("ok", 25), client("also-broken", 45)}

	alerts := billing.ComputeAlerts(clients, date(2024, 3, 22))

	require.Len(t, alerts, 1)
	assert.Equal(t, "ok", alerts[0].Client.ID)
}

func TestComputeAlerts_TiesKeepClientOrder(t *testing.T) {
	clients := []billing.Client{client("b", 25), client("a", 25), client("c", 23)}

	alerts := billing.ComputeAlerts(clients, date(2024, 3, 22))

	require.Len(t, alerts, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{alerts[0].Client.ID, alerts[1].Client.ID, alerts[2].Client.ID})
}

func TestComputeAlerts_EmptyIsNotNil(t *testing.T) {
	assert.NotNil(t, billing.ComputeAlerts(nil, date(2024, 3, 22)))
	assert.Empty(t, billing.ComputeAlerts([]billing.Client{client("far", 10)}, date(2024, 3, 22)))
}

func TestNextClosingDate(t *testing.T) {
	assert.Equal(t, "2024-01-31", billing.NextClosingDate(billing.EndOfMonth, date(2024, 1, 31)).Key())
	assert.Equal(t, "2024-01-25", billing.NextClosingDate(25, date(2024, 1, 25)).Key())
	assert.Equal(t, "2024-02-25", billing.NextClosingDate(25, date(2024, 1, 26)).Key())
	assert.Equal(t, "2025-01-10", billing.NextClosingDate(10, date(2024, 12, 20)).Key())
}
