/*
period.go - Billing period resolution

PURPOSE:
  Maps a client's closing-day rule and a target billing month to the
  inclusive range of work dates attributable to that month's invoice.

RULES:
  closingDay == 99 (end of month):
    [1st of month, last day of month]

  closingDay == d (1..31):
    [(d+1) of previous month, d of target month]

    closingDay=25, March 2024  ->  2024-02-26 .. 2024-03-25
    closingDay=31, March 2024  ->  2024-03-03 .. 2024-03-31
                                   ("Feb 32" carries forward to Mar 3)
    closingDay=30, March 2023  ->  2023-03-03 .. 2023-03-30

  Out-of-range days carry forward into the next month via generic.RollDate.
  They are never clamped to the month's last day.

SEE ALSO:
  - generic/time.go: RollDate
  - alerts.go: Uses ClosingDate for the upcoming-deadline scan
*/
package billing

import (
	"time"

	"github.com/warp/billing-engine/generic"
)

// ResolvePeriod returns the billing period for closingDay in year/month.
func ResolvePeriod(closingDay ClosingDay, year int, month time.Month) (generic.Period, error) {
	if err := closingDay.Validate(); err != nil {
		return generic.Period{}, err
	}
	if err := validateMonth(month); err != nil {
		return generic.Period{}, err
	}

	if closingDay.IsEndOfMonth() {
		return generic.Period{
			Start: generic.StartOfMonth(year, month),
			End:   generic.EndOfMonth(year, month),
		}, nil
	}

	d := int(closingDay)
	return generic.Period{
		Start: generic.RollDate(year, month-1, d+1),
		End:   generic.RollDate(year, month, d),
	}, nil
}

// ClosingDate is the date the cycle closes in year/month: the last day of
// the month for EndOfMonth, otherwise the closingDay-th with carry-forward.
func ClosingDate(closingDay ClosingDay, year int, month time.Month) generic.Date {
	if closingDay.IsEndOfMonth() {
		return generic.RollDate(year, month+1, 0)
	}
	return generic.RollDate(year, month, int(closingDay))
}

func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return generic.NewValidationError("month", int(month), "must be 1-12")
	}
	return nil
}
