/*
validator.go - Eligibility validation for leave applications

PURPOSE:
  Runs every eligibility check against a draft application and collects
  all failures into one result, so an applicant fixing a form sees the
  complete list instead of one error per round trip.

CHECK ORDER:
  1. Required fields
  2. Date sanity (ordering, positive days, future start)
  3. Long-span warning
  4. Overlap against pending/approved applications
  5. Balance sufficiency
  6. Low-remaining-balance warning
  7. Per-type rules (forced leave weekends, medical certificate,
     maternity/paternity duration limits, SPL annual quota)

  Checks run at validation time only; an application approved after its
  start date has passed is not re-validated against rule 2.

SEE ALSO:
  - lifecycle.go: Calls Validate inside the creation transaction
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	lowBalanceThreshold = decimal.RequireFromString("2")
	longSpanDays        = 30
	forcedLeaveMaxSpan  = 5
	medicalCertSpan     = 3
)

// ValidationResult collects the outcome of one validation pass.
// Warnings never block; Errors do. Shortfall is set when the balance
// check is what failed, so callers can surface the dedicated error type.
type ValidationResult struct {
	Errors    []string
	Warnings  []string
	Shortfall *InsufficientBalanceError
}

func (r *ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator evaluates eligibility rules. It reads applications for the
// overlap and quota checks; the balance and leave type are passed in by
// the caller, which already holds them inside its transaction.
type Validator struct {
	apps ApplicationStore
	now  func() time.Time
}

func NewValidator(apps ApplicationStore) *Validator {
	return &Validator{apps: apps, now: time.Now}
}

// Validate runs all checks against a draft application. The returned
// error is for infrastructure failures only; rule violations land in
// the result.
func (v *Validator) Validate(ctx context.Context, app *Application, lt *LeaveType, bal *Balance) (*ValidationResult, error) {
	res := &ValidationResult{}

	// 1. Required fields
	if app.EmployeeID == "" {
		res.fail("employee id is required")
	}
	if app.LeaveTypeID == "" {
		res.fail("leave type is required")
	}
	if app.StartDate.IsZero() {
		res.fail("start date is required")
	}
	if app.EndDate.IsZero() {
		res.fail("end date is required")
	}
	if !res.OK() {
		return res, nil
	}

	// 2. Date sanity
	if app.EndDate.Before(app.StartDate) {
		res.fail("start date must be on or before end date")
	}
	if !app.DaysRequested.IsPositive() {
		res.fail("days requested must be greater than zero")
	}
	today := DateOf(v.now())
	if !app.StartDate.After(today) {
		res.fail("start date must be in the future")
	}
	if !res.OK() {
		return res, nil
	}

	// 3. Long-span warning
	if app.SpanDays() > longSpanDays {
		res.warn("requested span exceeds %d calendar days", longSpanDays)
	}

	// 4. Overlap
	overlapping, err := v.apps.FindOverlapping(ctx, app.EmployeeID, app.StartDate, app.EndDate, app.ID)
	if err != nil {
		return nil, err
	}
	for _, o := range overlapping {
		res.fail("dates overlap application %s (%s to %s)", o.Number, o.StartDate, o.EndDate)
	}

	// 5. Balance sufficiency
	if bal.Current.LessThan(app.DaysRequested) {
		res.Shortfall = &InsufficientBalanceError{
			Available: bal.Current,
			Requested: app.DaysRequested,
		}
		res.Errors = append(res.Errors, res.Shortfall.Error())
	} else {
		// 6. Low-remaining-balance warning, only for types whose annual
		// entitlement exceeds 10 days. Small quota types always sit near zero.
		remaining := bal.Current.Sub(app.DaysRequested)
		if remaining.LessThan(lowBalanceThreshold) && lt.HasCap() && lt.Cap().GreaterThan(decimal.NewFromInt(10)) {
			res.warn("balance after approval would fall below %s days", lowBalanceThreshold)
		}
	}

	// 7. Per-type rules
	span := app.SpanDays()
	switch lt.Code {
	case CodeForced:
		if SpanIncludesWeekend(app.StartDate, app.EndDate) {
			res.fail("Forced leave cannot include weekends")
		}
		if span > forcedLeaveMaxSpan {
			res.warn("forced leave spans more than %d days", forcedLeaveMaxSpan)
		}
	case CodeSick:
		if lt.RequiresMedicalCert && span >= medicalCertSpan {
			res.warn("medical certificate required for sick leave of %d or more days", medicalCertSpan)
		}
	case CodeMaternity:
		if lt.HasCap() && decimal.NewFromInt(int64(span)).GreaterThan(lt.Cap()) {
			res.fail("maternity leave cannot exceed %s days", lt.Cap())
		}
	case CodePaternity:
		if lt.HasCap() && decimal.NewFromInt(int64(span)).GreaterThan(lt.Cap()) {
			res.fail("paternity leave cannot exceed %s days", lt.Cap())
		}
	case CodeSpecialPrivilege:
		if lt.HasCap() {
			used, err := v.apps.SumApprovedDays(ctx, app.EmployeeID, app.LeaveTypeID, app.Year())
			if err != nil {
				return nil, err
			}
			if msg, exceeded := splQuotaExceeded(used, app.DaysRequested, lt.Cap()); exceeded {
				res.fail("%s", msg)
			}
		}
	}

	return res, nil
}

// splQuotaExceeded checks the annual special privilege quota. Approve
// re-runs it against approvals that landed after the application was
// created, so it is shared with the lifecycle.
func splQuotaExceeded(used, requested, cap decimal.Decimal) (string, bool) {
	if used.Add(requested).GreaterThan(cap) {
		return fmt.Sprintf("SPL limit exceeded. Used: %s days, Annual limit: %s days", used, cap), true
	}
	return "", false
}
