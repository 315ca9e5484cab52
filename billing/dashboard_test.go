package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

func TestSummarize(t *testing.T) {
	// GIVEN entries around today, one a year back
	today := date(2024, 3, 22)
	half := entry("half-day", "acme", today, 0, 3000, 0)
	half.Quantity = decimal.RequireFromString("0.5")

	s := billing.EmptySnapshot()
	s.Clients = []billing.Client{client("acme", 25)}
	s.WorkEntries = []billing.WorkEntry{
		entry("earlier", "acme", date(2024, 3, 5), 2, 10000, 500),
		half,
		entry("later", "acme", date(2024, 3, 25), 1, 5000, 0),
		entry("next-month", "acme", date(2024, 4, 2), 1, 7000, 0),
		entry("last-year", "acme", date(2023, 3, 10), 1, 999, 0),
	}

	// WHEN summarizing
	d := billing.Summarize(s, today)

	// THEN revenue excludes expenses and other months
	assert.Equal(t, 1, d.ClientCount)
	assert.Equal(t, "26500", d.RevenueThisMonth.String())
	assert.Equal(t, 3, d.UpcomingWorkCount)
	require.Len(t, d.Alerts, 1)
	assert.Equal(t, "acme", d.Alerts[0].Client.ID)
}

func TestSummarize_Empty(t *testing.T) {
	d := billing.Summarize(billing.EmptySnapshot(), date(2024, 3, 22))

	assert.Zero(t, d.ClientCount)
	assert.True(t, d.RevenueThisMonth.IsZero())
	assert.NotNil(t, d.Alerts)
}

// =============================================================================
// INVOICE
// =============================================================================

func TestBuildInvoice(t *testing.T) {
	c := billing.Client{ID: "acme-co", Name: "Acme", ClosingDay: 25, PaymentTerms: "翌月末"}
	issuer := billing.UserProfile{CompanyName: "Kato Works"}

	inv, err := billing.BuildInvoice(billing.InvoiceRequest{
		Client:    c,
		Entries:   []billing.WorkEntry{entry("w", "acme-co", date(2024, 3, 1), 3, 10000, 1234)},
		Year:      2024,
		Month:     time.March,
		IssueDate: date(2024, 3, 26),
		Issuer:    issuer,
	})

	require.NoError(t, err)
	assert.Equal(t, "202403-acme", inv.InvoiceNumber)
	assert.Equal(t, "2024-02-26", inv.Period.Start.Key())
	assert.Equal(t, "2024-03-25", inv.Period.End.Key())
	assert.Equal(t, "2024-05-31", inv.DueDate.Key())
	assert.Equal(t, "2024-03-26", inv.IssueDate.Key())
	assert.Equal(t, "31234", inv.Subtotal.String())
	assert.Equal(t, "3123", inv.Tax.String())
	assert.Equal(t, "34357", inv.GrandTotal.String())
	assert.Equal(t, issuer, inv.Issuer)
}

func TestBuildInvoice_EmptyPeriodIsZero(t *testing.T) {
	inv, err := billing.BuildInvoice(billing.InvoiceRequest{
		Client: client("acme", 25), Year: 2024, Month: time.March,
	})

	require.NoError(t, err)
	assert.Empty(t, inv.Entries)
	assert.True(t, inv.GrandTotal.IsZero())
}

func TestBuildInvoice_InvalidClosingDay(t *testing.T) {
	_, err := billing.BuildInvoice(billing.InvoiceRequest{Client: client("acme", 0), Year: 2024, Month: time.March})
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestInvoiceFor_UnknownClient(t *testing.T) {
	_, err := billing.InvoiceFor(twoClients(), "ghost", 2024, time.March, date(2024, 3, 26))
	assert.ErrorIs(t, err, generic.ErrClientNotFound)
}
