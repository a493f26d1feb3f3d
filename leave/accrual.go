/*
accrual.go - Year initialization and monthly accrual

PURPOSE:
  Two entry points: InitializeYear seeds one balance row per leave type
  (prorated for employees appointed mid-year), and ProcessMonthlyAccrual
  credits the monthly VL/SL rate, capped at the type's annual maximum.

IDEMPOTENCY:
  InitializeYear skips rows that already exist. ProcessMonthlyAccrual
  refuses to run when the employee has no rows for the year (the year
  was never initialized) or when a completed run for the same
  (employee, year, month) was recorded within the last 7 days. Both
  refusals are no-op results, not errors; callers distinguish "nothing
  to do" from "failed".

SEE ALSO:
  - catalog.go: The Settings snapshot consumed here
  - api/scheduler.go: Drives this on a schedule
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// rerunGuardWindow suppresses repeat accrual for the same month when a
// completed run exists this recently. Retried jobs land well inside it.
const rerunGuardWindow = 7 * 24 * time.Hour

type AccrualProcessor struct {
	store    TxStore
	settings Settings
	locks    *BalanceLocks
	now      func() time.Time
}

func NewAccrualProcessor(store TxStore, settings Settings, locks *BalanceLocks) *AccrualProcessor {
	return &AccrualProcessor{store: store, settings: settings, locks: locks, now: time.Now}
}

// YearInit reports what InitializeYear did.
type YearInit struct {
	EmployeeID     EmployeeID
	Year           int
	ProratedMonths int
	Created        []TypeInit
	Skipped        []string // codes whose rows already existed
}

type TypeInit struct {
	Code   string
	Earned decimal.Decimal
}

// AccrualResult reports one monthly run. Applied is false when an
// idempotency guard stopped the run; Reason says which.
type AccrualResult struct {
	EmployeeID EmployeeID
	Year       int
	Month      int
	Applied    bool
	Reason     string
	Types      []TypeAccrual
}

type TypeAccrual struct {
	Code       string
	Credited   decimal.Decimal
	CapReached bool
}

// InitializeYear creates the year's balance rows for every catalog
// type. An employee appointed within the year earns a prorated share:
// appointment in September leaves 13-9 = 4 accruing months.
func (p *AccrualProcessor) InitializeYear(ctx context.Context, emp EmployeeID, year int) (*YearInit, error) {
	employee, err := p.store.GetEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &NotFoundError{Kind: "employee", Key: string(emp)}
	}

	months := 12
	if employee.AppointmentDate.Year() == year {
		months = 13 - int(employee.AppointmentDate.Month())
	}
	monthsDec := decimal.NewFromInt(int64(months))

	types, err := p.store.ListLeaveTypes(ctx)
	if err != nil {
		return nil, err
	}

	result := &YearInit{EmployeeID: emp, Year: year, ProratedMonths: months}
	err = p.store.WithTx(ctx, func(s Store) error {
		for _, lt := range types {
			existing, err := s.GetBalance(ctx, emp, lt.ID, year)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Skipped = append(result.Skipped, lt.Code)
				continue
			}

			earned := p.initialEarned(lt, monthsDec)
			if _, err := s.GetOrCreateBalance(ctx, emp, lt.ID, year); err != nil {
				return err
			}
			if earned.IsPositive() {
				if _, err := s.ApplyBalanceDelta(ctx, emp, lt.ID, year, BalanceDelta{Earned: earned}); err != nil {
					return err
				}
			}
			result.Created = append(result.Created, TypeInit{Code: lt.Code, Earned: earned})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *AccrualProcessor) initialEarned(lt LeaveType, months decimal.Decimal) decimal.Decimal {
	switch lt.Code {
	case CodeVacation:
		return p.settings.MonthlyVacationAccrual.Mul(months).Round(2)
	case CodeSick:
		return p.settings.MonthlySickAccrual.Mul(months).Round(2)
	case CodeSpecialPrivilege:
		if lt.HasCap() {
			return lt.Cap().Div(decimal.NewFromInt(12)).Mul(months).Round(2)
		}
		return decimal.Zero
	default:
		if lt.HasCap() {
			return lt.Cap()
		}
		return decimal.Zero
	}
}

// ProcessMonthlyAccrual credits the configured VL and SL monthly rates
// for one employee. The credit is clamped so earned never exceeds the
// type's annual cap; the clamped amount flows into the current balance.
func (p *AccrualProcessor) ProcessMonthlyAccrual(ctx context.Context, emp EmployeeID, year, month int) (*AccrualResult, error) {
	if month < 1 || month > 12 {
		return nil, Validationf("month must be between 1 and 12, got %d", month)
	}

	result := &AccrualResult{EmployeeID: emp, Year: year, Month: month}

	rows, err := p.store.ListBalancesForYear(ctx, emp, year)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		result.Reason = fmt.Sprintf("no balance rows for %d; year not initialized", year)
		return result, nil
	}

	accruing := []struct {
		code string
		rate decimal.Decimal
	}{
		{CodeVacation, p.settings.MonthlyVacationAccrual},
		{CodeSick, p.settings.MonthlySickAccrual},
	}

	// Resolve the accruing types up front so their balance locks can be
	// taken before the transaction opens, as Approve does. Acquisition
	// order is fixed (VL then SL), so two runs never deadlock each other.
	type target struct {
		lt   *LeaveType
		rate decimal.Decimal
	}
	var targets []target
	for _, a := range accruing {
		lt, err := p.store.GetLeaveTypeByCode(ctx, a.code)
		if err != nil {
			return nil, err
		}
		if lt == nil {
			continue
		}
		targets = append(targets, target{lt: lt, rate: a.rate})
	}
	for _, t := range targets {
		unlock := p.locks.Lock(emp, t.lt.ID, year)
		defer unlock()
	}

	// The guard check shares the transaction with the run record so two
	// concurrent runs for the same month cannot both pass it.
	err = p.store.WithTx(ctx, func(s Store) error {
		since := p.now().Add(-rerunGuardWindow)
		done, err := s.HasCompletedRun(ctx, RunMonthlyAccrual, emp, year, month, since)
		if err != nil {
			return err
		}
		if done {
			result.Reason = "accrual already processed for this month within the last 7 days"
			return nil
		}

		for _, t := range targets {
			lt := t.lt
			bal, err := s.GetBalance(ctx, emp, lt.ID, year)
			if err != nil {
				return err
			}
			if bal == nil {
				continue
			}

			credited := t.rate
			capReached := false
			if lt.HasCap() {
				headroom := lt.Cap().Sub(bal.Earned)
				if headroom.LessThan(credited) {
					credited = headroom
				}
				if credited.IsNegative() {
					credited = decimal.Zero
				}
				capReached = bal.Earned.Add(credited).GreaterThanOrEqual(lt.Cap())
			}

			if credited.IsPositive() {
				if _, err := s.ApplyBalanceDelta(ctx, emp, lt.ID, year, BalanceDelta{Earned: credited}); err != nil {
					return err
				}
			}
			result.Types = append(result.Types, TypeAccrual{Code: lt.Code, Credited: credited, CapReached: capReached})
		}
		result.Applied = true
		return s.RecordRun(ctx, RunRecord{
			ID:         uuid.NewString(),
			Kind:       RunMonthlyAccrual,
			EmployeeID: emp,
			Year:       year,
			Month:      month,
			Status:     RunCompleted,
			CreatedAt:  p.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
