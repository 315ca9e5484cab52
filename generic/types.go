/*
Package generic provides the calendar and money primitives of the billing engine.

PURPOSE:
  This package contains domain-agnostic types used by the billing domain:
  civil dates with explicit calendar rollover, inclusive periods, decimal
  money helpers, clock times for calendar slots, and the error taxonomy.
  Nothing here knows about clients, invoices or closing days.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal amounts (single currency, no minor-unit rounding)
  - Rate: a decimal multiplier such as the 10% consumption tax
  - ClockTime: an "HH:MM" wall-clock time for calendar slots

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Explicit calendar math: RollDate defines day/month carry (time.go)
  3. Pure values: Nothing here holds state or performs I/O

USAGE:
  subtotal := generic.NewMoney(25500)
  tax := generic.FloorRate(subtotal, generic.ConsumptionTaxRate) // 2550

SEE ALSO:
  - time.go: Date and RollDate
  - period.go: Inclusive date ranges
  - errors.go: ValidationError, InvalidDateError
*/
package generic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// ConsumptionTaxRate is applied to invoice subtotals.
var ConsumptionTaxRate = decimal.RequireFromString("0.1")

func NewMoney(value int64) decimal.Decimal { return decimal.NewFromInt(value) }

// FloorRate returns floor(amount * rate). Truncation toward negative
// infinity, never rounding.
func FloorRate(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Floor()
}

// Sum adds amounts in order.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// CLOCK TIME - "HH:MM" slot boundaries
// =============================================================================

// ClockTime is minutes since midnight. 24:00 is allowed as an end-of-day sentinel.
type ClockTime int

const EndOfDay ClockTime = 24 * 60

// ParseClockTime parses "HH:MM" (00:00 - 24:00).
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, NewValidationError("time", s, "expected HH:MM")
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, NewValidationError("time", s, "expected HH:MM")
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, NewValidationError("time", s, "expected HH:MM")
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, NewValidationError("time", s, "out of range")
	}
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON writes the "HH:MM" form used everywhere else on the wire.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return NewValidationError("time", string(b), "expected HH:MM")
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
