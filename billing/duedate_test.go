package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

func TestComputeDueDate(t *testing.T) {
	tests := []struct {
		name  string
		terms string
		year  int
		month time.Month
		want  string
	}{
		{"english phrase", "end of following month", 2024, time.March, "2024-05-31"},
		{"japanese phrase", "翌月末払い", 2024, time.March, "2024-05-31"},
		{"empty terms", "", 2024, time.March, "2024-05-31"},
		{"unrecognised terms", "net 30", 2024, time.March, "2024-05-31"},
		{"crosses year end", "", 2024, time.December, "2025-02-28"},
		{"lands on leap February", "", 2023, time.December, "2024-02-29"},
		{"30-day target month", "", 2024, time.February, "2024-04-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.ComputeDueDate(tt.terms, tt.year, tt.month)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Key())
		})
	}
}

func TestComputeDueDate_InvalidMonth(t *testing.T) {
	_, err := billing.ComputeDueDate("", 2024, 13)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, billing.PolicyEndOfMonthTwoOut, billing.PolicyFor("Payment: End Of Following Month"))
	assert.Equal(t, billing.DefaultPaymentPolicy, billing.PolicyFor("whenever"))
	assert.Equal(t, "2024-05-31", billing.PaymentPolicy("unknown").DueDate(2024, time.March).Key())
}
