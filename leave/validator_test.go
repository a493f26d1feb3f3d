package leave_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/leave"
)

func TestValidator_RequiredFields(t *testing.T) {
	f := newFixture(t)
	v := leave.NewValidator(f.store)

	vl := f.leaveType(t, leave.CodeVacation)
	res, err := v.Validate(context.Background(), &leave.Application{}, vl, &leave.Balance{})
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Contains(t, res.Errors, "employee id is required")
	assert.Contains(t, res.Errors, "leave type is required")
	assert.Contains(t, res.Errors, "start date is required")
	assert.Contains(t, res.Errors, "end date is required")
}

func TestValidator_EndBeforeStart(t *testing.T) {
	f := newFixture(t)
	v := leave.NewValidator(f.store)

	start := leave.Today().AddDays(10)
	app := &leave.Application{
		EmployeeID:    "emp-1",
		LeaveTypeID:   "lt-vl",
		StartDate:     start,
		EndDate:       start.AddDays(-2),
		DaysRequested: d("1"),
	}
	vl := f.leaveType(t, leave.CodeVacation)
	res, err := v.Validate(context.Background(), app, vl, &leave.Balance{Current: d("15")})
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "start date must be on or before end date")
}

func TestValidator_LongSpanWarns(t *testing.T) {
	// A 35-day request is allowed but flagged for review.
	f := newFixture(t)
	ctx := context.Background()
	v := leave.NewValidator(f.store)

	start := leave.Today().AddDays(10)
	app := &leave.Application{
		EmployeeID:    "emp-1",
		LeaveTypeID:   "lt-ml",
		StartDate:     start,
		EndDate:       start.AddDays(34),
		DaysRequested: d("35"),
	}
	ml := f.leaveType(t, leave.CodeMaternity)
	res, err := v.Validate(ctx, app, ml, &leave.Balance{Current: d("105")})
	require.NoError(t, err)
	assert.True(t, res.OK())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "exceeds 30 calendar days")
}

func TestValidator_LowBalanceWarnsOnlyForLargeQuotaTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := leave.NewValidator(f.store)
	start := leave.Today().AddDays(10)

	// VL (cap 15): remaining would be 1.5, below the threshold.
	vl := f.leaveType(t, leave.CodeVacation)
	app := &leave.Application{
		EmployeeID: "emp-1", LeaveTypeID: vl.ID,
		StartDate: start, EndDate: start.AddDays(2), DaysRequested: d("3"),
	}
	res, err := v.Validate(ctx, app, vl, &leave.Balance{Current: d("4.5")})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)

	// SPL (cap 3): always near zero, never warned.
	spl := f.leaveType(t, leave.CodeSpecialPrivilege)
	app.LeaveTypeID = spl.ID
	app.DaysRequested = d("2")
	res, err = v.Validate(ctx, app, spl, &leave.Balance{Current: d("3")})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Warnings)
}

func TestValidator_SickLeave_MedicalCertificateWarning(t *testing.T) {
	f := newFixture(t)
	v := leave.NewValidator(f.store)
	start := leave.Today().AddDays(10)

	sl := f.leaveType(t, leave.CodeSick)
	app := &leave.Application{
		EmployeeID: "emp-1", LeaveTypeID: sl.ID,
		StartDate: start, EndDate: start.AddDays(2), DaysRequested: d("3"),
	}
	res, err := v.Validate(context.Background(), app, sl, &leave.Balance{Current: d("15")})
	require.NoError(t, err)
	assert.True(t, res.OK())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "medical certificate")
}

func TestValidator_MaternityAndPaternityDurationCaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := leave.NewValidator(f.store)
	start := leave.Today().AddDays(10)

	ml := f.leaveType(t, leave.CodeMaternity)
	app := &leave.Application{
		EmployeeID: "emp-1", LeaveTypeID: ml.ID,
		StartDate: start, EndDate: start.AddDays(105), DaysRequested: d("106"),
	}
	res, err := v.Validate(ctx, app, ml, &leave.Balance{Current: d("200")})
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "maternity leave cannot exceed 105 days")

	pl := f.leaveType(t, leave.CodePaternity)
	app = &leave.Application{
		EmployeeID: "emp-1", LeaveTypeID: pl.ID,
		StartDate: start, EndDate: start.AddDays(7), DaysRequested: d("8"),
	}
	res, err = v.Validate(ctx, app, pl, &leave.Balance{Current: d("10")})
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "paternity leave cannot exceed 7 days")
}

func TestValidator_CollectsMultipleErrors(t *testing.T) {
	// One pass reports every failed rule, not just the first.
	f := newFixture(t)
	v := leave.NewValidator(f.store)

	start := leave.Today().AddDays(-5)
	app := &leave.Application{
		EmployeeID: "emp-1", LeaveTypeID: "lt-vl",
		StartDate: start, EndDate: start.AddDays(-1), DaysRequested: d("0"),
	}
	vl := f.leaveType(t, leave.CodeVacation)
	res, err := v.Validate(context.Background(), app, vl, &leave.Balance{})
	require.NoError(t, err)
	assert.Len(t, res.Errors, 3)
}
