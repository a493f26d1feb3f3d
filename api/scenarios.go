/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, balances,
	and applications that demonstrate specific features.

AVAILABLE SCENARIOS:

	new-employee:   Initialized year with one pending vacation request
	mid-year-hire:  Prorated entitlements for a September appointee
	active-ledger:  Approved and pending applications plus a monetization
	separation:     Salary history and a filed terminal benefit claim

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Reseed the leave type catalog
 3. Create employees
 4. Initialize balance years
 5. Optionally create, approve, or monetize against them

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "active-ledger"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: Route registration
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "new-employee",
		Name:        "New Employee",
		Description: "Full-year entitlements and one pending vacation request",
	},
	{
		ID:          "mid-year-hire",
		Name:        "Mid-Year Hire",
		Description: "September appointee with prorated accruals",
	},
	{
		ID:          "active-ledger",
		Name:        "Active Ledger",
		Description: "Approved and pending applications plus a monetization",
	},
	{
		ID:          "separation",
		Name:        "Separation",
		Description: "Salary history and a filed terminal benefit claim",
	},
}

// resettable is satisfied by the sqlite store. Scenario loading is
// refused on stores that cannot wipe themselves.
type resettable interface {
	Reset(ctx context.Context) error
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	store, ok := h.Store.(resettable)
	if !ok {
		writeError(w, http.StatusBadRequest, "store does not support scenario loading", nil)
		return
	}

	ctx := r.Context()
	if err := store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset database", err)
		return
	}
	if err := leave.SeedCatalog(ctx, h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reseed catalog", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "new-employee":
		err = h.loadNewEmployeeScenario(ctx)
	case "mid-year-hire":
		err = h.loadMidYearHireScenario(ctx)
	case "active-ledger":
		err = h.loadActiveLedgerScenario(ctx)
	case "separation":
		err = h.loadSeparationScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, id, name string, appointed leave.Date, salary string) error {
	return h.Store.SaveEmployee(ctx, &leave.Employee{
		ID:               leave.EmployeeID(id),
		Name:             name,
		Email:            id + "@example.com",
		AppointmentDate:  appointed,
		EmploymentStatus: "active",
		MonthlySalary:    decimal.RequireFromString(salary),
	})
}

func (h *Handler) loadNewEmployeeScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.seedEmployee(ctx, "emp-001", "Alice Johnson",
		leave.NewDate(year-1, time.December, 15), "30000"); err != nil {
		return err
	}
	if _, err := h.Accrual.InitializeYear(ctx, "emp-001", year); err != nil {
		return err
	}

	start := leave.Today().AddDays(14)
	_, _, err := h.Lifecycle.Create(ctx, &leave.Application{
		EmployeeID:    "emp-001",
		LeaveTypeID:   "lt-vl",
		StartDate:     start,
		EndDate:       start.AddDays(2),
		DaysRequested: decimal.NewFromInt(3),
		Reason:        "Long weekend trip",
	})
	return err
}

func (h *Handler) loadMidYearHireScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.seedEmployee(ctx, "emp-002", "Ben Castillo",
		leave.NewDate(year, time.September, 1), "25000"); err != nil {
		return err
	}
	_, err := h.Accrual.InitializeYear(ctx, "emp-002", year)
	return err
}

func (h *Handler) loadActiveLedgerScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.seedEmployee(ctx, "emp-003", "Carla Mendoza",
		leave.NewDate(year-4, time.June, 1), "42000"); err != nil {
		return err
	}
	if _, err := h.Accrual.InitializeYear(ctx, "emp-003", year); err != nil {
		return err
	}

	start := leave.Today().AddDays(21)
	approved, _, err := h.Lifecycle.Create(ctx, &leave.Application{
		EmployeeID:    "emp-003",
		LeaveTypeID:   "lt-vl",
		StartDate:     start,
		EndDate:       start.AddDays(4),
		DaysRequested: decimal.NewFromInt(5),
		Reason:        "Family reunion",
	})
	if err != nil {
		return err
	}
	if _, err := h.Lifecycle.Approve(ctx, approved.ID, "hr-demo", "approved for demo"); err != nil {
		return err
	}

	pendingStart := start.AddDays(30)
	if _, _, err := h.Lifecycle.Create(ctx, &leave.Application{
		EmployeeID:    "emp-003",
		LeaveTypeID:   "lt-sl",
		StartDate:     pendingStart,
		EndDate:       pendingStart.AddDays(1),
		DaysRequested: decimal.NewFromInt(2),
		Reason:        "Dental procedure",
	}); err != nil {
		return err
	}

	_, err = h.Monetizer.Monetize(ctx, "emp-003", "lt-sl", year,
		decimal.NewFromInt(3), "demo-payroll")
	return err
}

func (h *Handler) loadSeparationScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.seedEmployee(ctx, "emp-004", "Diego Ramos",
		leave.NewDate(year-10, time.February, 1), "55000"); err != nil {
		return err
	}
	for i, salary := range []string{"38000", "46000", "51000"} {
		if err := h.Store.AddServiceRecord(ctx, leave.ServiceRecord{
			EmployeeID:    "emp-004",
			MonthlySalary: decimal.RequireFromString(salary),
			EffectiveFrom: leave.NewDate(year-9+i*3, time.February, 1),
		}); err != nil {
			return err
		}
	}
	for _, y := range []int{year - 1, year} {
		if _, err := h.Accrual.InitializeYear(ctx, "emp-004", y); err != nil {
			return err
		}
	}

	_, err := h.Benefits.FileClaim(ctx, "emp-004",
		leave.Today(), leave.Today().AddDays(30))
	return err
}
