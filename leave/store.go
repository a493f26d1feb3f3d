/*
store.go - Persistence interfaces

PURPOSE:
  The engine talks to storage through these interfaces only. The sqlite
  implementation lives in store/sqlite; tests use the same sqlite store
  backed by ":memory:".

TRANSACTION MODEL:
  TxStore.WithTx runs a function against a transactional view of the
  store. Every multi-row mutation (approve + deduct, monetize + append
  record, carry-forward) goes through WithTx so partial writes never
  become visible.

TRANSITIONS:
  Status changes are expressed as a closed union of transition values
  rather than a free-form status setter. The store persists exactly the
  columns each variant carries; there is no way to reach a status
  without its accompanying audit fields.

SEE ALSO:
  - store/sqlite/sqlite.go: The only production implementation
  - lifecycle.go: The main consumer of WithTx
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSITION UNION
// =============================================================================

// Transition is a closed union of lifecycle state changes. Applications
// accept Approve, Reject, and Cancel; benefit claims accept Pay.
type Transition interface {
	isTransition()
	// Name is the verb used in error messages ("approve", "pay", ...).
	Name() string
}

type ApproveTransition struct {
	Reviewer string
	At       time.Time
	Notes    string
}

type RejectTransition struct {
	Reviewer string
	At       time.Time
	Notes    string
}

type CancelTransition struct {
	At time.Time
}

type PayTransition struct {
	Payer     string
	At        time.Time
	Reference string
}

func (ApproveTransition) isTransition() {}
func (RejectTransition) isTransition()  {}
func (CancelTransition) isTransition()  {}
func (PayTransition) isTransition()     {}

func (ApproveTransition) Name() string { return "approve" }
func (RejectTransition) Name() string  { return "reject" }
func (CancelTransition) Name() string  { return "cancel" }
func (PayTransition) Name() string     { return "pay" }

// =============================================================================
// STORE INTERFACES
// =============================================================================

// BalanceStore persists per-year balances. ApplyBalanceDelta is the
// single write path; it recomputes Current and fails with an
// InvariantError rather than persist a negative balance.
type BalanceStore interface {
	GetBalance(ctx context.Context, emp EmployeeID, lt LeaveTypeID, year int) (*Balance, error)
	GetOrCreateBalance(ctx context.Context, emp EmployeeID, lt LeaveTypeID, year int) (*Balance, error)
	ListBalances(ctx context.Context, emp EmployeeID) ([]Balance, error)
	ListBalancesForYear(ctx context.Context, emp EmployeeID, year int) ([]Balance, error)
	ApplyBalanceDelta(ctx context.Context, emp EmployeeID, lt LeaveTypeID, year int, delta BalanceDelta) (*Balance, error)
}

// ApplicationStore persists leave applications.
type ApplicationStore interface {
	SaveApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id string) (*Application, error)
	ListApplications(ctx context.Context, emp EmployeeID) ([]Application, error)

	// FindOverlapping returns pending or approved applications for the
	// employee whose inclusive date range intersects [start, end],
	// excluding the given application ID.
	FindOverlapping(ctx context.Context, emp EmployeeID, start, end Date, excludeID string) ([]Application, error)

	// SumApprovedDays totals DaysRequested over approved applications of
	// one type in one year. Used for annual per-type quotas.
	SumApprovedDays(ctx context.Context, emp EmployeeID, lt LeaveTypeID, year int) (decimal.Decimal, error)

	// NextApplicationNumber allocates the next "LA-<year>-<seq>" number.
	NextApplicationNumber(ctx context.Context, year int) (string, error)

	// ApplyTransition moves a pending application to a terminal status.
	// PayTransition is not valid for applications.
	ApplyTransition(ctx context.Context, id string, tr Transition) error
}

// CatalogStore manages the leave type catalog.
type CatalogStore interface {
	GetLeaveType(ctx context.Context, id LeaveTypeID) (*LeaveType, error)
	GetLeaveTypeByCode(ctx context.Context, code string) (*LeaveType, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
	SaveLeaveType(ctx context.Context, lt *LeaveType) error

	// DeleteLeaveType fails with ErrLeaveTypeReferenced while any balance
	// or application still points at the type.
	DeleteLeaveType(ctx context.Context, id LeaveTypeID) error
}

// MonetizationStore is append-only. Records are never updated or removed.
type MonetizationStore interface {
	AppendMonetization(ctx context.Context, rec MonetizationRecord) error
	ListMonetizations(ctx context.Context, emp EmployeeID) ([]MonetizationRecord, error)
}

// RunStore tracks batch executions for idempotency.
type RunStore interface {
	RecordRun(ctx context.Context, run RunRecord) error

	// HasCompletedRun reports whether a completed run of the given kind
	// exists for (emp, year, month) at or after since. A zero since
	// matches any completed run.
	HasCompletedRun(ctx context.Context, kind RunKind, emp EmployeeID, year, month int, since time.Time) (bool, error)
}

// SettingStore holds tunable numeric parameters (accrual rates, caps,
// the terminal benefit factor).
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (decimal.Decimal, bool, error)
	PutSetting(ctx context.Context, key string, value decimal.Decimal) error
	ListSettings(ctx context.Context) (map[string]decimal.Decimal, error)
}

// EmployeeStore persists employees and their salary history.
type EmployeeStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	SaveEmployee(ctx context.Context, e *Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)
	AddServiceRecord(ctx context.Context, rec ServiceRecord) error

	// HighestServiceSalary returns the maximum salary across the
	// employee's service records, or zero when none exist.
	HighestServiceSalary(ctx context.Context, emp EmployeeID) (decimal.Decimal, error)
}

// ClaimStore persists terminal benefit claims. Only PayTransition is
// valid for claims.
type ClaimStore interface {
	SaveClaim(ctx context.Context, c *TLBClaim) error
	GetClaim(ctx context.Context, id string) (*TLBClaim, error)
	ListClaims(ctx context.Context, emp EmployeeID) ([]TLBClaim, error)
	ApplyClaimTransition(ctx context.Context, id string, tr Transition) error
}

// Store is the full persistence surface.
type Store interface {
	BalanceStore
	ApplicationStore
	CatalogStore
	MonetizationStore
	RunStore
	SettingStore
	EmployeeStore
	ClaimStore
}

// TxStore adds transactional execution. The Store passed to fn sees and
// produces writes that commit together or not at all.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
