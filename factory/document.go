/*
Package factory converts JSON documents into billing records.

PURPOSE:
  The JSON boundary of the engine. Browser payloads, imported documents and
  CLI fixtures arrive as loosely typed JSON; the factory validates their
  shape with struct tags, parses dates (raising *generic.InvalidDateError
  before any computation sees them) and hands back billing records that
  have passed domain validation.

JSON SCHEMA (snapshot document):
  {
    "clients": [
      {"id": "c-1", "name": "Acme", "closing_day": 25,
       "payment_terms": "end of following month", "daily_rate": 30000}
    ],
    "work_entries": [
      {"id": "w-1", "date": "2024-03-05", "client_id": "c-1",
       "quantity": 2, "unit_price": 10000, "unit": "day",
       "expenses": 500, "start_time": "09:00", "end_time": "17:00"}
    ],
    "user_profile": {"company_name": "..."}
  }

  closing_day is 1..31 or 99 (end of month). Money fields accept JSON
  numbers or numeric strings.

USAGE:
  f := factory.NewDocumentFactory()
  snapshot, err := f.ParseSnapshot(body)
  var dateErr *generic.InvalidDateError
  if errors.As(err, &dateErr) { ... }

SEE ALSO:
  - billing/types.go: Record definitions and domain validation
  - api/dto.go: Request types that embed these JSON types
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ClientJSON is the JSON representation of a client.
type ClientJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name" validate:"required,max=200"`
	ContactPerson string          `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Address       string          `json:"address,omitempty" validate:"omitempty,max=500"`
	ClosingDay    int             `json:"closing_day" validate:"closing_day"`
	PaymentTerms  string          `json:"payment_terms,omitempty" validate:"omitempty,max=200"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
}

// WorkEntryJSON is the JSON representation of a work entry.
type WorkEntryJSON struct {
	ID          string          `json:"id"`
	Date        string          `json:"date" validate:"required"`
	ClientID    string          `json:"client_id" validate:"required"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	Expenses    decimal.Decimal `json:"expenses"`
	StartTime   string          `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime     string          `json:"end_time,omitempty" validate:"omitempty,clock"`
}

// SnapshotJSON is the whole per-user document.
type SnapshotJSON struct {
	Clients     []ClientJSON        `json:"clients" validate:"dive"`
	WorkEntries []WorkEntryJSON     `json:"work_entries" validate:"dive"`
	UserProfile billing.UserProfile `json:"user_profile"`
}

// =============================================================================
// DOCUMENT FACTORY
// =============================================================================

// DocumentFactory converts JSON documents to billing records.
type DocumentFactory struct {
	validate *validator.Validate
}

// NewDocumentFactory creates a factory with the billing validations registered.
func NewDocumentFactory() *DocumentFactory {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("closing_day", func(fl validator.FieldLevel) bool {
		return billing.ClosingDay(fl.Field().Int()).Validate() == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseClockTime(fl.Field().String())
		return err == nil
	})
	return &DocumentFactory{validate: v}
}

// ParseSnapshot parses and validates a whole document.
func (f *DocumentFactory) ParseSnapshot(data []byte) (billing.Snapshot, error) {
	var sj SnapshotJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return billing.Snapshot{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return f.SnapshotFromJSON(sj)
}

// SnapshotFromJSON converts a decoded document.
func (f *DocumentFactory) SnapshotFromJSON(sj SnapshotJSON) (billing.Snapshot, error) {
	s := billing.EmptySnapshot()
	s.UserProfile = sj.UserProfile
	for _, cj := range sj.Clients {
		c, err := f.ClientFromJSON(cj)
		if err != nil {
			return billing.Snapshot{}, err
		}
		s.Clients = append(s.Clients, c)
	}
	for _, ej := range sj.WorkEntries {
		e, err := f.WorkEntryFromJSON(ej)
		if err != nil {
			return billing.Snapshot{}, err
		}
		s.WorkEntries = append(s.WorkEntries, e)
	}
	if err := s.Validate(); err != nil {
		return billing.Snapshot{}, err
	}
	return s, nil
}

// ParseClient parses a single client.
func (f *DocumentFactory) ParseClient(data []byte) (billing.Client, error) {
	var cj ClientJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return billing.Client{}, fmt.Errorf("failed to parse client JSON: %w", err)
	}
	return f.ClientFromJSON(cj)
}

// ClientFromJSON validates and converts a client.
func (f *DocumentFactory) ClientFromJSON(cj ClientJSON) (billing.Client, error) {
	if err := f.Struct(cj); err != nil {
		return billing.Client{}, err
	}
	c := billing.Client{
		ID:            cj.ID,
		Name:          cj.Name,
		ContactPerson: cj.ContactPerson,
		Address:       cj.Address,
		ClosingDay:    billing.ClosingDay(cj.ClosingDay),
		PaymentTerms:  cj.PaymentTerms,
		DailyRate:     cj.DailyRate,
	}
	if err := c.Validate(); err != nil {
		return billing.Client{}, err
	}
	return c, nil
}

// ParseWorkEntry parses a single work entry.
func (f *DocumentFactory) ParseWorkEntry(data []byte) (billing.WorkEntry, error) {
	var ej WorkEntryJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return billing.WorkEntry{}, fmt.Errorf("failed to parse work entry JSON: %w", err)
	}
	return f.WorkEntryFromJSON(ej)
}

// WorkEntryFromJSON validates and converts a work entry. The date is parsed
// before anything else looks at the record.
func (f *DocumentFactory) WorkEntryFromJSON(ej WorkEntryJSON) (billing.WorkEntry, error) {
	if ej.Date != "" {
		if _, err := generic.ParseDate(ej.Date); err != nil {
			return billing.WorkEntry{}, err
		}
	}
	if err := f.Struct(ej); err != nil {
		return billing.WorkEntry{}, err
	}
	date, _ := generic.ParseDate(ej.Date)
	e := billing.WorkEntry{
		ID:          ej.ID,
		Date:        date,
		ClientID:    ej.ClientID,
		Description: ej.Description,
		Quantity:    ej.Quantity,
		UnitPrice:   ej.UnitPrice,
		Unit:        ej.Unit,
		Expenses:    ej.Expenses,
		StartTime:   ej.StartTime,
		EndTime:     ej.EndTime,
	}
	if err := e.Validate(); err != nil {
		return billing.WorkEntry{}, err
	}
	return e, nil
}

// ToClientJSON converts back for responses.
func ToClientJSON(c billing.Client) ClientJSON {
	return ClientJSON{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Address:       c.Address,
		ClosingDay:    int(c.ClosingDay),
		PaymentTerms:  c.PaymentTerms,
		DailyRate:     c.DailyRate,
	}
}

// ToWorkEntryJSON converts back for responses.
func ToWorkEntryJSON(e billing.WorkEntry) WorkEntryJSON {
	return WorkEntryJSON{
		ID:          e.ID,
		Date:        e.Date.Key(),
		ClientID:    e.ClientID,
		Description: e.Description,
		Quantity:    e.Quantity,
		UnitPrice:   e.UnitPrice,
		Unit:        e.Unit,
		Expenses:    e.Expenses,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
	}
}

// ToSnapshotJSON converts a whole document for export.
func ToSnapshotJSON(s billing.Snapshot) SnapshotJSON {
	sj := SnapshotJSON{
		Clients:     make([]ClientJSON, 0, len(s.Clients)),
		WorkEntries: make([]WorkEntryJSON, 0, len(s.WorkEntries)),
		UserProfile: s.UserProfile,
	}
	for _, c := range s.Clients {
		sj.Clients = append(sj.Clients, ToClientJSON(c))
	}
	for _, e := range s.WorkEntries {
		sj.WorkEntries = append(sj.WorkEntries, ToWorkEntryJSON(e))
	}
	return sj
}

// =============================================================================
// VALIDATION
// =============================================================================

// Struct runs tag validation and reports the first failure as a
// *generic.ValidationError.
func (f *DocumentFactory) Struct(v any) error {
	err := f.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return generic.NewValidationError(fe.Field(), fe.Value(), describeTag(fe))
	}
	return err
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "closing_day":
		return "must be 1-31 or 99 (end of month)"
	case "clock":
		return "expected HH:MM"
	case "max":
		return "longer than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
