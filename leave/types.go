/*
types.go - Core domain types for the leave ledger

PURPOSE:
  Defines the entities the engine operates on: leave types, per-year
  balances, applications, monetization records, and terminal benefit
  claims. All day quantities use decimal.Decimal; leave accrues in
  fractional days (1.25/month) and float arithmetic drifts.

KEY DECISIONS:
  - Balances are keyed (employee, leave type, year). Current is always
    derived as earned + carried_forward - used - monetized and must
    never go negative; the store rejects any delta that would.
  - Applications carry a human-facing number "LA-<year>-<seq>" assigned
    at creation, separate from the opaque ID.
  - Monetization is append-only: records are never updated or deleted.

SEE ALSO:
  - store.go: Persistence interfaces and the Transition union
  - validator.go: Eligibility rules evaluated against these types
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type LeaveTypeID string

// =============================================================================
// LEAVE TYPE - Catalog entry describing one kind of leave
// =============================================================================

type LeaveType struct {
	ID                  LeaveTypeID
	Code                string // short code, at most 10 chars (e.g. "VL", "SPL")
	Name                string
	Description         string
	MaxDaysPerYear      *decimal.Decimal // nil = unbounded
	IsMonetizable       bool
	RequiresMedicalCert bool
	CreatedAt           time.Time
}

// HasCap reports whether the type has an annual earning ceiling.
func (lt LeaveType) HasCap() bool { return lt.MaxDaysPerYear != nil }

// Cap returns the annual ceiling, or zero decimal for unbounded types.
// Callers must check HasCap first.
func (lt LeaveType) Cap() decimal.Decimal {
	if lt.MaxDaysPerYear == nil {
		return decimal.Zero
	}
	return *lt.MaxDaysPerYear
}

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID               EmployeeID
	Name             string
	Email            string
	AppointmentDate  Date
	EmploymentStatus string // "active", "separated"
	MonthlySalary    decimal.Decimal
	SeparationDate   *Date
	CreatedAt        time.Time
}

// ServiceRecord captures one salary step in an employee's history.
// Terminal benefit computations use the highest salary on record.
type ServiceRecord struct {
	ID            string
	EmployeeID    EmployeeID
	MonthlySalary decimal.Decimal
	EffectiveFrom Date
}

// =============================================================================
// BALANCE - One employee, one leave type, one year
// =============================================================================

type Balance struct {
	ID             string
	EmployeeID     EmployeeID
	LeaveTypeID    LeaveTypeID
	Year           int
	Earned         decimal.Decimal
	Used           decimal.Decimal
	Monetized      decimal.Decimal
	CarriedForward decimal.Decimal
	Current        decimal.Decimal
	UpdatedAt      time.Time
}

// Derived recomputes Current from the component columns.
func (b Balance) Derived() decimal.Decimal {
	return b.Earned.Add(b.CarriedForward).Sub(b.Used).Sub(b.Monetized)
}

// Credits is the portion of the balance that counts toward terminal
// benefits: earned days net of usage and monetization. Carried-forward
// days already counted in their year of origin.
func (b Balance) Credits() decimal.Decimal {
	return b.Earned.Sub(b.Used).Sub(b.Monetized)
}

// BalanceDelta describes an atomic adjustment to one balance row.
// Zero fields leave the corresponding column untouched.
type BalanceDelta struct {
	Earned         decimal.Decimal
	Used           decimal.Decimal
	Monetized      decimal.Decimal
	CarriedForward decimal.Decimal
}

// =============================================================================
// APPLICATION - A leave request and its lifecycle state
// =============================================================================

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusCancelled ApplicationStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type Application struct {
	ID            string
	Number        string // "LA-2026-000042"
	EmployeeID    EmployeeID
	LeaveTypeID   LeaveTypeID
	StartDate     Date
	EndDate       Date
	DaysRequested decimal.Decimal
	Reason        string
	Status        ApplicationStatus
	ReviewedBy    string
	ReviewedAt    *time.Time
	ReviewNotes   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SpanDays is the inclusive calendar span of the request. Per-type
// duration rules (ML/PL limits, forced leave weekends) use this rather
// than DaysRequested, which may exclude non-working days.
func (a *Application) SpanDays() int { return SpanDays(a.StartDate, a.EndDate) }

// Year is the balance year the application draws from.
func (a *Application) Year() int { return a.StartDate.Year() }

// =============================================================================
// MONETIZATION - Append-only audit of credit-to-cash conversions
// =============================================================================

type MonetizationRecord struct {
	ID          string
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID
	Year        int
	Days        decimal.Decimal
	Reference   string
	CreatedAt   time.Time
}

// =============================================================================
// TERMINAL BENEFIT
// =============================================================================

// TerminalBenefit is the computed payout for a separating employee.
type TerminalBenefit struct {
	EmployeeID     EmployeeID
	ClaimDate      Date
	SeparationDate Date
	TotalCredits   decimal.Decimal
	HighestSalary  decimal.Decimal
	ConstantFactor decimal.Decimal
	Amount         decimal.Decimal
}

type ClaimStatus string

const (
	ClaimPending ClaimStatus = "pending"
	ClaimPaid    ClaimStatus = "paid"
)

// TLBClaim is a filed terminal leave benefit claim awaiting payment.
type TLBClaim struct {
	ID             string
	EmployeeID     EmployeeID
	ClaimDate      Date
	SeparationDate Date
	TotalCredits   decimal.Decimal
	HighestSalary  decimal.Decimal
	ConstantFactor decimal.Decimal
	Amount         decimal.Decimal
	Status         ClaimStatus
	PaidBy         string
	PaidAt         *time.Time
	PaymentRef     string
	CreatedAt      time.Time
}

// =============================================================================
// BATCH RUNS - Idempotency markers for accrual and carry-forward
// =============================================================================

type RunKind string

const (
	RunMonthlyAccrual RunKind = "monthly_accrual"
	RunCarryForward   RunKind = "carry_forward"
)

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunRecord marks one batch execution against one employee. Re-runs
// consult these records instead of re-deriving state from balances.
type RunRecord struct {
	ID         string
	Kind       RunKind
	EmployeeID EmployeeID
	Year       int
	Month      int // 0 for carry-forward runs
	Status     RunStatus
	Detail     string
	CreatedAt  time.Time
}
