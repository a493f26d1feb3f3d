package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/leave"
	"github.com/warp/leave-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, leave.SeedCatalog(context.Background(), store))

	handler := api.NewHandler(store, leave.DefaultSettings())
	return api.NewRouter(handler, zerolog.Nop())
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	} else {
		buf.WriteString("{}")
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}

type jsonMap = map[string]any

// createEmployee posts an employee appointed well before the test year
// and returns its id.
func createEmployee(t *testing.T, router *chi.Mux) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/employees", jsonMap{
		"name":             "Ana Reyes",
		"appointment_date": "2020-03-01",
		"monthly_salary":   "30000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	emp := decode[jsonMap](t, rec)
	return emp["id"].(string)
}

func initializeYear(t *testing.T, router *chi.Mux, empID string, year int) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/admin/employees/%s/initialize-year", empID), jsonMap{"year": year})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func testYear() int { return time.Now().Year() + 1 }

// futureMonday picks a mid-year Monday so date rules and weekend rules
// stay predictable.
func futureMonday() leave.Date {
	d := leave.NewDate(testYear(), time.June, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDays(1)
	}
	return d
}

// =============================================================================
// EMPLOYEES AND BALANCES
// =============================================================================

func TestAPI_CreateEmployeeAndInitializeYear(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/employees/%s/balances?year=%d", empID, testYear()), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balances := decode[[]jsonMap](t, rec)
	require.Len(t, balances, 6)

	byType := map[string]jsonMap{}
	for _, b := range balances {
		byType[b["leave_type_id"].(string)] = b
	}
	assert.Equal(t, "15.00", byType["lt-vl"]["current_balance"])
	assert.Equal(t, "105.00", byType["lt-ml"]["earned_days"])
}

func TestAPI_GetEmployee_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// APPLICATION FLOW
// =============================================================================

func TestAPI_ApplicationLifecycle(t *testing.T) {
	// GIVEN: An initialized employee with 15 VL days
	// WHEN: An application is created, approved, then approved again
	// THEN: 201 / 200 with deducted balance / 409

	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	start := futureMonday()
	rec := doJSON(t, router, http.MethodPost, "/api/applications", jsonMap{
		"employee_id":    empID,
		"leave_type_id":  "lt-vl",
		"start_date":     start.String(),
		"end_date":       start.AddDays(4).String(),
		"days_requested": "5",
		"reason":         "family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[jsonMap](t, rec)
	assert.Equal(t, "pending", app["status"])
	appID := app["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/applications/"+appID+"/approve",
		jsonMap{"reviewer": "hr-manager"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[jsonMap](t, rec)["status"])

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/employees/%s/balances?year=%d", empID, testYear()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, b := range decode[[]jsonMap](t, rec) {
		if b["leave_type_id"] == "lt-vl" {
			assert.Equal(t, "5.00", b["used_days"])
			assert.Equal(t, "10.00", b["current_balance"])
		}
	}

	rec = doJSON(t, router, http.MethodPost, "/api/applications/"+appID+"/approve",
		jsonMap{"reviewer": "hr-manager"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CreateApplication_InsufficientBalanceIs422(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	start := futureMonday()
	rec := doJSON(t, router, http.MethodPost, "/api/applications", jsonMap{
		"employee_id":    empID,
		"leave_type_id":  "lt-vl",
		"start_date":     start.String(),
		"end_date":       start.AddDays(19).String(),
		"days_requested": "20",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	resp := decode[jsonMap](t, rec)
	assert.Equal(t, "insufficient balance", resp["error"])
}

func TestAPI_CreateApplication_ValidationErrorsIs400(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	rec := doJSON(t, router, http.MethodPost, "/api/applications", jsonMap{
		"employee_id":   empID,
		"leave_type_id": "lt-vl",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[jsonMap](t, rec)
	assert.NotEmpty(t, resp["messages"])
}

func TestAPI_GetApplication_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/applications/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ApproveWithoutReviewer_Rejected(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/applications/x/approve", jsonMap{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestAPI_DeleteReferencedLeaveTypeIs409(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	rec := doJSON(t, router, http.MethodDelete, "/api/leave-types/lt-vl", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/leave-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]jsonMap](t, rec), 6)
}

func TestAPI_SaveLeaveType_BadCodeIs400(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/leave-types", jsonMap{
		"code": "THISCODEISTOOLONG",
		"name": "Oversized",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// MONETIZATION AND BATCH
// =============================================================================

func TestAPI_MonetizeFlow(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	rec := doJSON(t, router, http.MethodPost, "/api/employees/"+empID+"/monetize", jsonMap{
		"leave_type_id": "lt-vl",
		"year":          testYear(),
		"days":          "5",
		"reference":     "payroll-jun",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "5.00", decode[jsonMap](t, rec)["days"])

	// Forced leave is not monetizable.
	rec = doJSON(t, router, http.MethodPost, "/api/employees/"+empID+"/monetize", jsonMap{
		"leave_type_id": "lt-fl",
		"year":          testYear(),
		"days":          "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/employees/"+empID+"/monetizations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]jsonMap](t, rec), 1)
}

func TestAPI_MonthlyAccrualEndpoint(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)

	// Uninitialized year: no-op with a reason, still 200.
	rec := doJSON(t, router, http.MethodPost,
		"/api/admin/employees/"+empID+"/accrual",
		jsonMap{"year": testYear(), "month": 6})
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[jsonMap](t, rec)
	assert.Equal(t, false, result["Applied"])
}

func TestAPI_SettingsRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/admin/settings/max_carry_forward_days",
		jsonMap{"value": "7"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/admin/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[map[string]string](t, rec)
	assert.Equal(t, "7", settings["max_carry_forward_days"])
}

// =============================================================================
// TERMINAL BENEFITS
// =============================================================================

func TestAPI_BenefitAndClaimFlow(t *testing.T) {
	router := newTestRouter(t)
	empID := createEmployee(t, router)
	initializeYear(t, router, empID, testYear())

	sep := fmt.Sprintf("%d-12-31", testYear())
	claim := fmt.Sprintf("%d-11-01", testYear())

	rec := doJSON(t, router, http.MethodPost, "/api/employees/"+empID+"/benefit",
		jsonMap{"claim_date": claim, "separation_date": sep})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	benefit := decode[jsonMap](t, rec)
	// 15 VL + 15 SL + 5 FL + 105 ML + 7 PL + 3 SPL credits at 30000 salary
	assert.Equal(t, "150.00", benefit["total_credits"])
	assert.Equal(t, "4500000.00", benefit["amount"])

	rec = doJSON(t, router, http.MethodPost, "/api/employees/"+empID+"/claims",
		jsonMap{"claim_date": claim, "separation_date": sep})
	require.Equal(t, http.StatusCreated, rec.Code)
	claimID := decode[jsonMap](t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/claims/"+claimID+"/pay",
		jsonMap{"payer": "treasury", "reference": "voucher-9"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", decode[jsonMap](t, rec)["status"])

	rec = doJSON(t, router, http.MethodPost, "/api/claims/"+claimID+"/pay",
		jsonMap{"payer": "treasury"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_Healthz(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
