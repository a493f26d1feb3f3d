package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_ListAll(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]jsonMap](t, rec), 4)
}

func TestScenarios_UnknownID(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		jsonMap{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenarios_LoadEachScenario(t *testing.T) {
	// Every scenario must load cleanly onto a fresh database, and a
	// reload must not fail on leftover state.
	for _, id := range []string{"new-employee", "mid-year-hire", "active-ledger", "separation"} {
		t.Run(id, func(t *testing.T) {
			router := newTestRouter(t)
			rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
				jsonMap{"scenario_id": id})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
				jsonMap{"scenario_id": id})
			assert.Equal(t, http.StatusOK, rec.Code, "reload after reset")

			rec = doJSON(t, router, http.MethodGet, "/api/employees", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decode[[]jsonMap](t, rec), 1)
		})
	}
}

func TestScenarios_ActiveLedgerState(t *testing.T) {
	// GIVEN: The active-ledger scenario
	// WHEN: It is loaded
	// THEN: One approved and one pending application exist and the
	//       sick balance shows the monetization

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		jsonMap{"scenario_id": "active-ledger"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/employees/emp-003/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	apps := decode[[]jsonMap](t, rec)
	require.Len(t, apps, 2)

	statuses := map[string]int{}
	for _, a := range apps {
		statuses[a["status"].(string)]++
	}
	assert.Equal(t, 1, statuses["approved"])
	assert.Equal(t, 1, statuses["pending"])

	rec = doJSON(t, router, http.MethodGet, "/api/employees/emp-003/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, b := range decode[[]jsonMap](t, rec) {
		switch b["leave_type_id"] {
		case "lt-vl":
			assert.Equal(t, "5.00", b["used_days"])
		case "lt-sl":
			assert.Equal(t, "3.00", b["monetized_days"])
		}
	}
}

func TestScenarios_SeparationFilesClaim(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		jsonMap{"scenario_id": "separation"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/employees/emp-004/claims", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	claims := decode[[]jsonMap](t, rec)
	require.Len(t, claims, 1)
	assert.Equal(t, "pending", claims[0]["status"])
	// Historical salary 51000 is below the current 55000.
	assert.Equal(t, "55000.00", claims[0]["highest_salary"])
}
