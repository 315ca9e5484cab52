// Package billing implements the contractor billing domain on top of the
// generic calendar and money primitives: clients with closing-day rules,
// dated work entries, billing periods, invoices, due dates, closing-day
// alerts and the calendar schedule index.
//
// Every function here is a pure computation over an immutable Snapshot.
// Mutations return a new Snapshot; persistence lives behind SnapshotStore.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// CLOSING DAY
// =============================================================================

// ClosingDay is the day of the month a client's billing cycle ends.
// Valid values are 1..31 and EndOfMonth.
type ClosingDay int

// EndOfMonth closes on the last calendar day of each month.
const EndOfMonth ClosingDay = 99

func (c ClosingDay) IsEndOfMonth() bool { return c == EndOfMonth }

// Validate rejects anything outside {1..31, 99}. Values are never clamped.
func (c ClosingDay) Validate() error {
	if c == EndOfMonth || (c >= 1 && c <= 31) {
		return nil
	}
	return generic.NewValidationError("closing_day", int(c), "must be 1-31 or 99 (end of month)")
}

func (c ClosingDay) String() string {
	if c.IsEndOfMonth() {
		return "end of month"
	}
	return fmt.Sprintf("day %d", int(c))
}

// =============================================================================
// RECORDS
// =============================================================================

// Client is a party the contractor bills.
type Client struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ContactPerson string          `json:"contact_person,omitempty"`
	Address       string          `json:"address,omitempty"`
	ClosingDay    ClosingDay      `json:"closing_day"`
	PaymentTerms  string          `json:"payment_terms,omitempty"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
}

// Validate checks the invariants the engine relies on.
func (c Client) Validate() error {
	if c.Name == "" {
		return generic.NewValidationError("name", c.Name, "required")
	}
	if err := c.ClosingDay.Validate(); err != nil {
		return err
	}
	if c.DailyRate.IsNegative() {
		return generic.NewValidationError("daily_rate", c.DailyRate, "must not be negative")
	}
	return nil
}

// WorkEntry is one dated unit of work for a client.
type WorkEntry struct {
	ID          string          `json:"id"`
	Date        generic.Date    `json:"date"`
	ClientID    string          `json:"client_id"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	Expenses    decimal.Decimal `json:"expenses"`
	StartTime   string          `json:"start_time,omitempty"` // HH:MM, display only
	EndTime     string          `json:"end_time,omitempty"`   // HH:MM, display only
}

// LineTotal is quantity * unitPrice + expenses.
func (e WorkEntry) LineTotal() decimal.Decimal {
	return e.Quantity.Mul(e.UnitPrice).Add(e.Expenses)
}

// Validate checks the non-negativity invariants and that the date is set.
// Times are checked only for format; they never affect money.
func (e WorkEntry) Validate() error {
	if e.Date.IsZero() {
		return generic.NewValidationError("date", "", "required")
	}
	if e.ClientID == "" {
		return generic.NewValidationError("client_id", e.ClientID, "required")
	}
	if e.Quantity.IsNegative() {
		return generic.NewValidationError("quantity", e.Quantity, "must not be negative")
	}
	if e.Expenses.IsNegative() {
		return generic.NewValidationError("expenses", e.Expenses, "must not be negative")
	}
	if err := validateClock("start_time", e.StartTime); err != nil {
		return err
	}
	return validateClock("end_time", e.EndTime)
}

func validateClock(field, v string) error {
	if v == "" {
		return nil
	}
	if _, err := generic.ParseClockTime(v); err != nil {
		return generic.NewValidationError(field, v, "expected HH:MM")
	}
	return nil
}

// UserProfile is the contractor's letterhead. The engine never reads it; it
// flows through to invoice output untouched.
type UserProfile struct {
	CompanyName        string `json:"company_name,omitempty"`
	CompanyAddress     string `json:"company_address,omitempty"`
	CompanyTel         string `json:"company_tel,omitempty"`
	BankInfo           string `json:"bank_info,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	CompanyLogo        string `json:"company_logo,omitempty"` // data URL
}

// Snapshot is the whole per-user document.
type Snapshot struct {
	Clients     []Client    `json:"clients"`
	WorkEntries []WorkEntry `json:"work_entries"`
	UserProfile UserProfile `json:"user_profile"`
}

// EmptySnapshot has non-nil slices so it serialises as [] rather than null.
func EmptySnapshot() Snapshot {
	return Snapshot{Clients: []Client{}, WorkEntries: []WorkEntry{}}
}

// Client looks up a client by id.
func (s Snapshot) Client(id string) (Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// Entry looks up a work entry by id.
func (s Snapshot) Entry(id string) (WorkEntry, bool) {
	for _, e := range s.WorkEntries {
		if e.ID == id {
			return e, true
		}
	}
	return WorkEntry{}, false
}
