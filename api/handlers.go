/*
handlers.go - HTTP API handlers for the leave ledger

PURPOSE:
  Exposes the leave ledger engine via REST API. Handles HTTP request
  parsing, JSON serialization, and delegates to the domain layer.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List employees
    POST   /api/employees                       Create/update employee
    GET    /api/employees/{id}                  Get employee
    POST   /api/employees/{id}/service-records  Add salary history entry
    GET    /api/employees/{id}/balances         List balance rows
    GET    /api/employees/{id}/applications     List applications
    GET    /api/employees/{id}/monetizations    Monetization history

  Applications:
    POST   /api/applications                    Create (validated, pending)
    GET    /api/applications/{id}               Get application
    POST   /api/applications/{id}/approve       Approve + deduct
    POST   /api/applications/{id}/reject        Reject
    POST   /api/applications/{id}/cancel        Cancel (pending only)

  Catalog:
    GET    /api/leave-types                     List
    POST   /api/leave-types                     Create/update
    DELETE /api/leave-types/{id}                Delete (blocked if referenced)

  Monetization:
    POST   /api/employees/{id}/monetize         Convert credits to cash

  Admin batch:
    POST   /api/admin/employees/{id}/initialize-year
    POST   /api/admin/employees/{id}/accrual
    POST   /api/admin/employees/{id}/carry-forward
    GET    /api/admin/settings
    PUT    /api/admin/settings/{key}

  Terminal benefits:
    POST   /api/employees/{id}/benefit          Compute (no persistence)
    POST   /api/employees/{id}/claims           File claim
    GET    /api/employees/{id}/claims           List claims
    POST   /api/claims/{id}/pay                 Settle a pending claim

ERROR HANDLING:
  Domain errors map to HTTP status by category:
  - 400: validation errors
  - 404: missing employee/leave type/application/balance
  - 409: state conflicts, referenced leave type
  - 422: insufficient balance
  - 500: invariant violations and infrastructure failures

SECURITY NOTE:
  No authentication or authorization; this service sits behind the HR
  platform's gateway, which owns identity.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        leave.TxStore
	Lifecycle    *leave.Lifecycle
	Accrual      *leave.AccrualProcessor
	Monetizer    *leave.MonetizationProcessor
	CarryForward *leave.CarryForwardProcessor
	Benefits     *leave.BenefitCalculator
}

// NewHandler wires the engine components around one store and one
// settings snapshot.
func NewHandler(store leave.TxStore, settings leave.Settings) *Handler {
	locks := leave.NewBalanceLocks()
	return &Handler{
		Store:        store,
		Lifecycle:    leave.NewLifecycle(store, locks),
		Accrual:      leave.NewAccrualProcessor(store, settings, locks),
		Monetizer:    leave.NewMonetizationProcessor(store, locks),
		CarryForward: leave.NewCarryForwardProcessor(store, settings),
		Benefits:     leave.NewBenefitCalculator(store, settings),
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(emps))
	for _, e := range emps {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	appointment, err := leave.ParseDate(req.AppointmentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment_date", err)
		return
	}
	salary, err := parseDecimal(req.MonthlySalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monthly_salary", err)
		return
	}

	emp := &leave.Employee{
		ID:               leave.EmployeeID(req.ID),
		Name:             req.Name,
		Email:            req.Email,
		AppointmentDate:  appointment,
		EmploymentStatus: req.EmploymentStatus,
		MonthlySalary:    salary,
	}
	if emp.ID == "" {
		emp.ID = leave.EmployeeID(uuid.NewString())
	}
	if req.SeparationDate != "" {
		sep, err := leave.ParseDate(req.SeparationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid separation_date", err)
			return
		}
		emp.SeparationDate = &sep
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// AddServiceRecord appends a salary history entry.
// POST /api/employees/{id}/service-records
func (h *Handler) AddServiceRecord(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	var req AddServiceRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	salary, err := parseDecimal(req.MonthlySalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monthly_salary", err)
		return
	}
	from, err := leave.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid effective_from", err)
		return
	}

	if emp, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	} else if emp == nil {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return
	}

	rec := leave.ServiceRecord{EmployeeID: id, MonthlySalary: salary, EffectiveFrom: from}
	if err := h.Store.AddServiceRecord(r.Context(), rec); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// ListBalances returns balance rows for an employee, optionally
// filtered by ?year=.
// GET /api/employees/{id}/balances
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	var balances []leave.Balance
	var err error
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "invalid year", convErr)
			return
		}
		balances, err = h.Store.ListBalancesForYear(r.Context(), id, year)
	} else {
		balances, err = h.Store.ListBalances(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// APPLICATION ENDPOINTS
// =============================================================================

// CreateApplication validates and persists a pending application.
// POST /api/applications
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	app := &leave.Application{
		EmployeeID:  leave.EmployeeID(req.EmployeeID),
		LeaveTypeID: leave.LeaveTypeID(req.LeaveTypeID),
		Reason:      req.Reason,
	}
	var err error
	if req.StartDate != "" {
		if app.StartDate, err = leave.ParseDate(req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err)
			return
		}
	}
	if req.EndDate != "" {
		if app.EndDate, err = leave.ParseDate(req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err)
			return
		}
	}
	if req.DaysRequested != "" {
		if app.DaysRequested, err = parseDecimal(req.DaysRequested); err != nil {
			writeError(w, http.StatusBadRequest, "invalid days_requested", err)
			return
		}
	}

	created, warnings, err := h.Lifecycle.Create(r.Context(), app)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationDTO(created, warnings))
}

// GetApplication returns one application.
// GET /api/applications/{id}
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.Store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "application not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app, nil))
}

// ListApplications returns an employee's applications.
// GET /api/employees/{id}/applications
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	apps, err := h.Store.ListApplications(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		dtos = append(dtos, toApplicationDTO(&apps[i], nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveApplication approves and deducts atomically.
// POST /api/applications/{id}/approve
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Reviewer == "" {
		writeError(w, http.StatusBadRequest, "reviewer is required", nil)
		return
	}
	app, err := h.Lifecycle.Approve(r.Context(), chi.URLParam(r, "id"), req.Reviewer, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app, nil))
}

// RejectApplication rejects a pending application.
// POST /api/applications/{id}/reject
func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Reviewer == "" {
		writeError(w, http.StatusBadRequest, "reviewer is required", nil)
		return
	}
	app, err := h.Lifecycle.Reject(r.Context(), chi.URLParam(r, "id"), req.Reviewer, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app, nil))
}

// CancelApplication cancels a pending application.
// POST /api/applications/{id}/cancel
func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.Lifecycle.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(app, nil))
}

// =============================================================================
// LEAVE TYPE CATALOG ENDPOINTS
// =============================================================================

// ListLeaveTypes returns the catalog.
// GET /api/leave-types
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListLeaveTypes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		dtos = append(dtos, toLeaveTypeDTO(lt))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveLeaveType creates or updates a catalog entry.
// POST /api/leave-types
func (h *Handler) SaveLeaveType(w http.ResponseWriter, r *http.Request) {
	var req SaveLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	lt := &leave.LeaveType{
		ID:                  leave.LeaveTypeID(req.ID),
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		IsMonetizable:       req.IsMonetizable,
		RequiresMedicalCert: req.RequiresMedicalCert,
	}
	if lt.ID == "" {
		lt.ID = leave.LeaveTypeID(uuid.NewString())
	}
	if req.MaxDaysPerYear != "" {
		maxDays, err := parseDecimal(req.MaxDaysPerYear)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_days_per_year", err)
			return
		}
		lt.MaxDaysPerYear = &maxDays
	}

	if err := h.Store.SaveLeaveType(r.Context(), lt); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(*lt))
}

// DeleteLeaveType removes an unreferenced catalog entry.
// DELETE /api/leave-types/{id}
func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	id := leave.LeaveTypeID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteLeaveType(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// MONETIZATION ENDPOINTS
// =============================================================================

// Monetize converts days of a balance into a payable record.
// POST /api/employees/{id}/monetize
func (h *Handler) Monetize(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	var req MonetizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	days, err := parseDecimal(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid days", err)
		return
	}

	rec, err := h.Monetizer.Monetize(r.Context(), id, leave.LeaveTypeID(req.LeaveTypeID), req.Year, days, req.Reference)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMonetizationDTO(*rec))
}

// ListMonetizations returns an employee's monetization history.
// GET /api/employees/{id}/monetizations
func (h *Handler) ListMonetizations(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	recs, err := h.Store.ListMonetizations(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]MonetizationDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, toMonetizationDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN BATCH ENDPOINTS
// =============================================================================

// InitializeYear seeds the year's balance rows for one employee.
// POST /api/admin/employees/{id}/initialize-year
func (h *Handler) InitializeYear(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	var req InitializeYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.Accrual.InitializeYear(r.Context(), id, req.Year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RunMonthlyAccrual credits the month's VL/SL accrual for one employee.
// POST /api/admin/employees/{id}/accrual
func (h *Handler) RunMonthlyAccrual(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	var req MonthlyAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.Accrual.ProcessMonthlyAccrual(r.Context(), id, req.Year, req.Month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RunCarryForward rolls unused VL/SL into the next year.
// POST /api/admin/employees/{id}/carry-forward
func (h *Handler) RunCarryForward(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	var req CarryForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.CarryForward.ProcessCarryForward(r.Context(), id, req.FromYear, req.ToYear)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListSettings returns the stored tunables.
// GET /api/admin/settings
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.ListSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		out[k] = v.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// PutSetting stores one tunable. Processors pick it up on restart.
// PUT /api/admin/settings/{key}
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req PutSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	value, err := parseDecimal(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value", err)
		return
	}
	if err := h.Store.PutSetting(r.Context(), key, value); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{key: value.String()})
}

// =============================================================================
// TERMINAL BENEFIT ENDPOINTS
// =============================================================================

// ComputeBenefit calculates the terminal benefit without persisting.
// POST /api/employees/{id}/benefit
func (h *Handler) ComputeBenefit(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	claimDate, sepDate, ok := parseBenefitDates(w, r)
	if !ok {
		return
	}
	benefit, err := h.Benefits.Calculate(r.Context(), id, claimDate, sepDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBenefitDTO(benefit))
}

// FileClaim computes and persists a pending claim.
// POST /api/employees/{id}/claims
func (h *Handler) FileClaim(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	claimDate, sepDate, ok := parseBenefitDates(w, r)
	if !ok {
		return
	}
	claim, err := h.Benefits.FileClaim(r.Context(), id, claimDate, sepDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClaimDTO(claim))
}

// ListClaims returns an employee's claims.
// GET /api/employees/{id}/claims
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	claims, err := h.Store.ListClaims(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ClaimDTO, 0, len(claims))
	for i := range claims {
		dtos = append(dtos, toClaimDTO(&claims[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PayClaim settles a pending claim.
// POST /api/claims/{id}/pay
func (h *Handler) PayClaim(w http.ResponseWriter, r *http.Request) {
	var req PayClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Payer == "" {
		writeError(w, http.StatusBadRequest, "payer is required", nil)
		return
	}
	claim, err := h.Benefits.MarkPaid(r.Context(), chi.URLParam(r, "id"), req.Payer, req.Reference)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(claim))
}

func parseBenefitDates(w http.ResponseWriter, r *http.Request) (leave.Date, leave.Date, bool) {
	var req BenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return leave.Date{}, leave.Date{}, false
	}
	claimDate, err := leave.ParseDate(req.ClaimDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim_date", err)
		return leave.Date{}, leave.Date{}, false
	}
	sepDate, err := leave.ParseDate(req.SeparationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid separation_date", err)
		return leave.Date{}, leave.Date{}, false
	}
	return claimDate, sepDate, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Messages = []string{err.Error()}
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error categories to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *leave.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:    "validation failed",
			Messages: validation.Messages,
		})
		return
	}

	switch {
	case errors.Is(err, leave.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, leave.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, leave.ErrStateConflict), errors.Is(err, leave.ErrLeaveTypeReferenced):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "insufficient balance", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
