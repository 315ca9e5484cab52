/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built ledgers that populate a user's document with
	realistic data. Each scenario is built relative to the reference day so
	that alerts, the dashboard and the calendar always have something to
	show.

AVAILABLE SCENARIOS:

	freelancer:     Two clients (closing 25th, end of month) with a month of work
	closing-soon:   Closing dates inside the alert window
	busy-week:      Timed entries across the current week
	blank:          Issuer profile only

HOW SCENARIOS WORK:
 1. Build a Snapshot for the reference day
 2. Replace the user's document through the Ledger (validated)
 3. Remember the scenario id for the user

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "freelancer"}

NOTE:

	Loading replaces the user's whole document.

SEE ALSO:
  - handlers.go: Handler and Ledger wiring
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Two clients, closing on the 25th and at month end, with a month of work",
	},
	{
		ID:          "closing-soon",
		Name:        "Closing Soon",
		Description: "Clients whose closing dates fall inside the five-day alert window",
	},
	{
		ID:          "busy-week",
		Name:        "Busy Week",
		Description: "Timed work entries spread over the current week",
	},
	{
		ID:          "blank",
		Name:        "Blank",
		Description: "Issuer profile only, no clients",
	},
}

// Scenarios lists the available demo scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// BuildScenario returns the snapshot for a scenario relative to today.
func BuildScenario(id string, today generic.Date) (billing.Snapshot, error) {
	switch id {
	case "freelancer":
		return freelancerScenario(today), nil
	case "closing-soon":
		return closingSoonScenario(today), nil
	case "busy-week":
		return busyWeekScenario(today), nil
	case "blank":
		s := billing.EmptySnapshot()
		s.UserProfile = demoProfile()
		return s, nil
	default:
		return billing.Snapshot{}, generic.NewValidationError("scenario_id", id, "unknown scenario")
	}
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the scenario last loaded for the user, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id := h.currentScenario[userFrom(r)]
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == id {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the user's document with a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Factory.Struct(req); err != nil {
		h.writeDomainError(w, "Invalid request", err)
		return
	}

	s, err := BuildScenario(req.ScenarioID, h.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		return
	}
	user := userFrom(r)
	if err := h.Ledger.ReplaceSnapshot(r.Context(), user, s); err != nil {
		h.writeDomainError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario[user] = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func demoProfile() billing.UserProfile {
	return billing.UserProfile{
		CompanyName:        "Kato Interior Works",
		CompanyAddress:     "2-4-1 Minato, Tokyo",
		CompanyTel:         "03-0000-0000",
		BankInfo:           "Demo Bank, Main Branch, Ordinary 1234567",
		RegistrationNumber: "T1234567890123",
	}
}

func entry(id, clientID string, date generic.Date, desc string, qty, price, expenses int64, unit string) billing.WorkEntry {
	return billing.WorkEntry{
		ID:          id,
		Date:        date,
		ClientID:    clientID,
		Description: desc,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(price),
		Unit:        unit,
		Expenses:    decimal.NewFromInt(expenses),
	}
}

// freelancerScenario: one client closing on the 25th, one at month end,
// with work on both sides of the 25th in the current month.
func freelancerScenario(today generic.Date) billing.Snapshot {
	y, m := today.Year(), today.Month()
	on := func(day int) generic.Date { return generic.RollDate(y, m, day) }

	s := billing.EmptySnapshot()
	s.UserProfile = demoProfile()
	s.Clients = []billing.Client{
		{
			ID:            "client-tanaka",
			Name:          "Tanaka Construction",
			ContactPerson: "Mr. Tanaka",
			ClosingDay:    25,
			PaymentTerms:  "end of following month",
			DailyRate:     decimal.NewFromInt(25000),
		},
		{
			ID:           "client-sato",
			Name:         "Sato Renovation",
			ClosingDay:   billing.EndOfMonth,
			PaymentTerms: "翌月末",
			DailyRate:    decimal.NewFromInt(30000),
		},
	}
	s.WorkEntries = []billing.WorkEntry{
		entry("entry-1", "client-tanaka", on(3), "Flooring", 2, 25000, 1200, billing.UnitDay),
		entry("entry-2", "client-tanaka", on(12), "Wallpaper", 1, 25000, 0, billing.UnitDay),
		entry("entry-3", "client-tanaka", on(27), "Touch-up", 1, 8000, 0, billing.UnitLumpSum),
		entry("entry-4", "client-sato", on(8), "Kitchen fit-out", 3, 30000, 4500, billing.UnitDay),
		entry("entry-5", "client-sato", on(20), "Inspection", 2, 6000, 0, billing.UnitHour),
	}
	return s
}

// closingSoonScenario: closing dates 1, 3 and 10 days out; the last is
// outside the alert window.
func closingSoonScenario(today generic.Date) billing.Snapshot {
	s := billing.EmptySnapshot()
	s.UserProfile = demoProfile()
	for i, days := range []int{3, 1, 10} {
		closing := today.AddDays(days)
		s.Clients = append(s.Clients, billing.Client{
			ID:           fmt.Sprintf("client-%d", i+1),
			Name:         fmt.Sprintf("Closing in %d days", days),
			ClosingDay:   billing.ClosingDay(closing.Day()),
			PaymentTerms: "end of following month",
		})
	}
	return s
}

// busyWeekScenario: timed entries Monday to Friday of the current week plus
// one untimed entry that only shows in the month and day views.
func busyWeekScenario(today generic.Date) billing.Snapshot {
	s := billing.EmptySnapshot()
	s.UserProfile = demoProfile()
	s.Clients = []billing.Client{{
		ID:           "client-ito",
		Name:         "Ito Architects",
		ClosingDay:   20,
		PaymentTerms: "end of following month",
		DailyRate:    decimal.NewFromInt(28000),
	}}

	sunday := generic.StartOfWeek(today)
	for i := 1; i <= 5; i++ {
		e := entry(fmt.Sprintf("entry-%d", i), "client-ito", sunday.AddDays(i), "Site work", 1, 28000, 0, billing.UnitDay)
		e.StartTime, e.EndTime = "09:00", "17:00"
		s.WorkEntries = append(s.WorkEntries, e)
	}
	meeting := entry("entry-6", "client-ito", sunday.AddDays(3), "Client meeting", 1, 0, 0, billing.UnitLumpSum)
	meeting.StartTime, meeting.EndTime = "18:00", "19:00"
	s.WorkEntries = append(s.WorkEntries, meeting)
	s.WorkEntries = append(s.WorkEntries,
		entry("entry-7", "client-ito", sunday.AddDays(6), "Material pickup", 1, 3000, 800, billing.UnitLumpSum))
	return s
}
