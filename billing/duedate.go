package billing

import (
	"strings"
	"time"

	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// PAYMENT POLICY
// =============================================================================

// PaymentPolicy is the rule that turns a billing month into a due date.
type PaymentPolicy string

const (
	// PolicyEndOfMonthTwoOut is due on the last day of the month two months
	// after the billing month (March billing -> May 31).
	PolicyEndOfMonthTwoOut PaymentPolicy = "end_of_month_two_out"
)

// DefaultPaymentPolicy applies when terms are empty or unrecognised.
const DefaultPaymentPolicy = PolicyEndOfMonthTwoOut

// recognizedTerms maps phrases found in free-text payment terms to a policy.
// Every phrase maps to the single implemented policy today.
var recognizedTerms = []struct {
	phrase string
	policy PaymentPolicy
}{
	{phrase: "end of following month", policy: PolicyEndOfMonthTwoOut},
	{phrase: "翌月末", policy: PolicyEndOfMonthTwoOut},
}

// PolicyFor matches terms against the recognised phrases (substring,
// case-insensitive) and falls back to DefaultPaymentPolicy.
func PolicyFor(terms string) PaymentPolicy {
	lower := strings.ToLower(terms)
	for _, t := range recognizedTerms {
		if strings.Contains(lower, t.phrase) {
			return t.policy
		}
	}
	return DefaultPaymentPolicy
}

// DueDate applies the policy to a billing month.
func (p PaymentPolicy) DueDate(year int, month time.Month) generic.Date {
	switch p {
	case PolicyEndOfMonthTwoOut:
		return generic.EndOfMonth(year, month+2)
	default:
		return DefaultPaymentPolicy.DueDate(year, month)
	}
}

// ComputeDueDate derives the payment due date from free-text terms.
func ComputeDueDate(paymentTerms string, year int, month time.Month) (generic.Date, error) {
	if err := validateMonth(month); err != nil {
		return generic.Date{}, err
	}
	return PolicyFor(paymentTerms).DueDate(year, month), nil
}
