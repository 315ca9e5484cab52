package factory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

const sampleDocument = `{
  "clients": [
    {"id": "c-1", "name": "Acme", "closing_day": 99, "payment_terms": "翌月末", "daily_rate": "30000"}
  ],
  "work_entries": [
    {"id": "w-1", "date": "2024-03-05", "client_id": "c-1", "quantity": 2, "unit_price": 10000, "unit": "day"},
    {"id": "w-2", "date": "2024-03-20", "client_id": "c-1", "quantity": 1, "unit_price": 5000, "expenses": 500,
     "start_time": "13:00", "end_time": "24:00"}
  ],
  "user_profile": {"company_name": "Kato Works"}
}`

func TestParseSnapshot(t *testing.T) {
	f := NewDocumentFactory()

	s, err := f.ParseSnapshot([]byte(sampleDocument))
	require.NoError(t, err)

	require.Len(t, s.Clients, 1)
	assert.Equal(t, billing.EndOfMonth, s.Clients[0].ClosingDay)
	assert.True(t, decimal.NewFromInt(30000).Equal(s.Clients[0].DailyRate))
	require.Len(t, s.WorkEntries, 2)
	assert.Equal(t, generic.NewDate(2024, 3, 20), s.WorkEntries[1].Date)
	assert.Equal(t, "Kato Works", s.UserProfile.CompanyName)

	// The closing-day-99 scenario from the billing rules
	inv, err := billing.BuildInvoice(billing.InvoiceRequest{
		Client: s.Clients[0], Entries: s.WorkEntries, Year: 2024, Month: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "25500", inv.Subtotal.String())
	assert.Equal(t, "2550", inv.Tax.String())
	assert.Equal(t, "28050", inv.GrandTotal.String())
}

func TestParseSnapshot_InvalidDate(t *testing.T) {
	f := NewDocumentFactory()

	_, err := f.ParseSnapshot([]byte(`{"clients":[{"id":"c","name":"C","closing_day":10}],
		"work_entries":[{"id":"w","date":"2024-13-40","client_id":"c"}]}`))

	var dateErr *generic.InvalidDateError
	require.True(t, errors.As(err, &dateErr), "got %v", err)
	assert.Equal(t, "2024-13-40", dateErr.Input)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestParseClient_Validation(t *testing.T) {
	f := NewDocumentFactory()

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"missing name", `{"closing_day": 10}`, "name"},
		{"closing day zero", `{"name": "A", "closing_day": 0}`, "closing_day"},
		{"closing day 32", `{"name": "A", "closing_day": 32}`, "closing_day"},
		{"closing day 100", `{"name": "A", "closing_day": 100}`, "closing_day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseClient([]byte(tt.json))

			var ve *generic.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, generic.ErrValidation)
		})
	}
}

func TestParseClient_AcceptsBoundaries(t *testing.T) {
	f := NewDocumentFactory()

	for _, doc := range []string{`{"name":"A","closing_day":1}`, `{"name":"A","closing_day":31}`, `{"name":"A","closing_day":99}`} {
		_, err := f.ParseClient([]byte(doc))
		assert.NoError(t, err, doc)
	}
}

func TestParseWorkEntry_Validation(t *testing.T) {
	f := NewDocumentFactory()

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"missing client", `{"date": "2024-03-01"}`, "client_id"},
		{"missing date", `{"client_id": "c"}`, "date"},
		{"bad start time", `{"date": "2024-03-01", "client_id": "c", "start_time": "25:00"}`, "start_time"},
		{"negative quantity", `{"date": "2024-03-01", "client_id": "c", "quantity": -1}`, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseWorkEntry([]byte(tt.json))

			var ve *generic.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParseSnapshot_DuplicateIDs(t *testing.T) {
	f := NewDocumentFactory()

	_, err := f.ParseSnapshot([]byte(`{"clients":[
		{"id":"c","name":"A","closing_day":10},
		{"id":"c","name":"B","closing_day":20}]}`))

	assert.ErrorIs(t, err, generic.ErrDuplicateID)
}

func TestParseSnapshot_MalformedJSON(t *testing.T) {
	_, err := NewDocumentFactory().ParseSnapshot([]byte(`{"clients": [`))
	assert.Error(t, err)
}

func TestToSnapshotJSON_RoundTrip(t *testing.T) {
	f := NewDocumentFactory()
	s, err := f.ParseSnapshot([]byte(sampleDocument))
	require.NoError(t, err)

	again, err := f.SnapshotFromJSON(ToSnapshotJSON(s))
	require.NoError(t, err)

	assert.Equal(t, len(s.WorkEntries), len(again.WorkEntries))
	assert.Equal(t, "2024-03-05", ToSnapshotJSON(again).WorkEntries[0].Date)
	assert.Equal(t, "24:00", again.WorkEntries[1].EndTime)
}
