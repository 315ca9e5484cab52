package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y int, m time.Month, d int) generic.Date {
	return generic.NewDate(y, m, d)
}

// =============================================================================
// RESOLVE PERIOD
// =============================================================================

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name       string
		closingDay billing.ClosingDay
		year       int
		month      time.Month
		start, end string
	}{
		{"closing 25", 25, 2024, time.March, "2024-02-26", "2024-03-25"},
		{"end of month", billing.EndOfMonth, 2024, time.March, "2024-03-01", "2024-03-31"},
		{"end of month leap February", billing.EndOfMonth, 2024, time.February, "2024-02-01", "2024-02-29"},
		{"closing 31 carries Feb 32 forward", 31, 2024, time.March, "2024-03-03", "2024-03-31"},
		{"closing 30 in common year", 30, 2023, time.March, "2023-03-03", "2023-03-30"},
		{"closing 10 across the year boundary", 10, 2024, time.January, "2023-12-11", "2024-01-10"},
		{"closing 1", 1, 2024, time.March, "2024-02-02", "2024-03-01"},
		{"closing 31 in a 30-day month", 31, 2024, time.April, "2024-04-01", "2024-05-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := billing.ResolvePeriod(tt.closingDay, tt.year, tt.month)

			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Start.Key())
			assert.Equal(t, tt.end, p.End.Key())
			assert.NoError(t, p.Validate())
		})
	}
}

func TestResolvePeriod_RejectsInvalidClosingDay(t *testing.T) {
	for _, cd := range []billing.ClosingDay{0, -1, 32, 98, 100} {
		_, err := billing.ResolvePeriod(cd, 2024, time.March)
		assert.ErrorIs(t, err, generic.ErrValidation, "closing day %d", cd)
	}
}

func TestResolvePeriod_RejectsInvalidMonth(t *testing.T) {
	for _, m := range []time.Month{0, 13} {
		_, err := billing.ResolvePeriod(25, 2024, m)
		assert.ErrorIs(t, err, generic.ErrValidation)
	}
}

func TestClosingDate(t *testing.T) {
	assert.Equal(t, "2024-02-29", billing.ClosingDate(billing.EndOfMonth, 2024, time.February).Key())
	assert.Equal(t, "2024-03-25", billing.ClosingDate(25, 2024, time.March).Key())
	assert.Equal(t, "2024-05-01", billing.ClosingDate(31, 2024, time.April).Key())
}

func TestClosingDay_String(t *testing.T) {
	assert.Equal(t, "end of month", billing.EndOfMonth.String())
	assert.Equal(t, "day 25", billing.ClosingDay(25).String())
}
