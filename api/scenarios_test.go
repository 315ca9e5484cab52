/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario builds a valid document and shows what it
	promises (alerts, billable months, timed week entries) when loaded.
*/
package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/generic"
)

func TestBuildScenario_AllValid(t *testing.T) {
	for _, today := range []generic.Date{
		generic.NewDate(2024, 1, 31),
		generic.NewDate(2024, 2, 27),
		generic.NewDate(2023, 12, 30),
		generic.NewDate(2024, 3, 22),
	} {
		for _, sc := range Scenarios() {
			s, err := BuildScenario(sc.ID, today)
			require.NoError(t, err, "%s on %s", sc.ID, today)
			assert.NoError(t, s.Validate(), "%s on %s", sc.ID, today)
		}
	}
}

func TestBuildScenario_Unknown(t *testing.T) {
	_, err := BuildScenario("nope", generic.NewDate(2024, 3, 22))
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestClosingSoonScenario_Alerts(t *testing.T) {
	for _, today := range []generic.Date{
		generic.NewDate(2024, 3, 22),
		generic.NewDate(2024, 1, 29),
		generic.NewDate(2023, 2, 26),
	} {
		s, err := BuildScenario("closing-soon", today)
		require.NoError(t, err)

		alerts := billing.ComputeAlerts(s.Clients, today)

		require.Len(t, alerts, 2, today.String())
		assert.Equal(t, 1, alerts[0].DaysRemaining)
		assert.Equal(t, 3, alerts[1].DaysRemaining)
	}
}

func TestFreelancerScenario_InvoicesCurrentMonth(t *testing.T) {
	today := generic.NewDate(2024, 3, 22)
	s, err := BuildScenario("freelancer", today)
	require.NoError(t, err)

	// Closing on the 25th: 3rd and 12th billed in March, 27th rolls to April
	inv, err := billing.InvoiceFor(s, "client-tanaka", 2024, time.March, today)
	require.NoError(t, err)
	assert.Len(t, inv.Entries, 2)

	inv, err = billing.InvoiceFor(s, "client-sato", 2024, time.March, today)
	require.NoError(t, err)
	assert.Len(t, inv.Entries, 2)
	assert.Equal(t, "2024-05-31", inv.DueDate.Key())
}

func TestBusyWeekScenario_WeekView(t *testing.T) {
	today := generic.NewDate(2024, 3, 20) // Wednesday
	s, err := BuildScenario("busy-week", today)
	require.NoError(t, err)

	week := billing.NewScheduleIndex(s.WorkEntries).Week(today)

	slots := 0
	for _, d := range week.Days {
		slots += len(d.Slots)
	}
	assert.Equal(t, 6, slots) // the untimed Saturday entry has no slot
	assert.Len(t, week.Days[3].Slots, 2)
}

func TestLoadScenario_API(t *testing.T) {
	// GIVEN: A user with existing data
	_, router := newTestAPI(t)
	seedAcme(t, router)

	// WHEN: The freelancer scenario is loaded
	rec := call(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "freelancer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The document is replaced and the scenario is remembered
	clients := decode[[]factory.ClientJSON](t, call(t, router, http.MethodGet, "/api/clients", nil))
	require.Len(t, clients, 2)
	assert.Equal(t, "client-tanaka", clients[0].ID)

	current := decode[ScenarioDTO](t, call(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "freelancer", current.ID)
}

func TestLoadScenario_API_Errors(t *testing.T) {
	_, router := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{}).Code)

	rec := call(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "null", rec.Body.String())
}

func TestListScenarios_NoUserNeeded(t *testing.T) {
	_, router := newTestAPI(t)

	rec := callAs(t, router, "", http.MethodGet, "/api/scenarios", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))
}
