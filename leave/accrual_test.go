package leave_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// YEAR INITIALIZATION
// =============================================================================

func TestAccrual_InitializeYear_FullYearEntitlements(t *testing.T) {
	// GIVEN: An employee appointed in a prior year
	// WHEN: A new year is initialized
	// THEN: Every catalog type gets a row with its full-year entitlement

	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2022, time.March, 1))
	init, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)

	assert.Equal(t, 12, init.ProratedMonths)
	assert.Len(t, init.Created, 6)
	assert.Empty(t, init.Skipped)

	expected := map[string]string{
		leave.CodeVacation:         "15",
		leave.CodeSick:             "15",
		leave.CodeForced:           "5",
		leave.CodeMaternity:        "105",
		leave.CodePaternity:        "7",
		leave.CodeSpecialPrivilege: "3",
	}
	for code, want := range expected {
		lt := f.leaveType(t, code)
		bal := f.balance(t, "emp-1", lt.ID, 2026)
		assert.True(t, bal.Earned.Equal(d(want)), "%s earned: want %s got %s", code, want, bal.Earned)
		assert.True(t, bal.Current.Equal(d(want)), "%s current mirrors earned", code)
	}
}

func TestAccrual_InitializeYear_ProratedForMidYearAppointment(t *testing.T) {
	// GIVEN: An employee appointed in September of the year
	// WHEN: That year is initialized
	// THEN: Accruing types earn 13-9 = 4 months' worth

	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2026, time.September, 15))
	init, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)
	assert.Equal(t, 4, init.ProratedMonths)

	vl := f.leaveType(t, leave.CodeVacation)
	assert.True(t, f.balance(t, "emp-1", vl.ID, 2026).Earned.Equal(d("5")), "4 x 1.25")

	spl := f.leaveType(t, leave.CodeSpecialPrivilege)
	assert.True(t, f.balance(t, "emp-1", spl.ID, 2026).Earned.Equal(d("1")), "3/12 x 4")

	// Non-accruing types are granted whole regardless of proration.
	ml := f.leaveType(t, leave.CodeMaternity)
	assert.True(t, f.balance(t, "emp-1", ml.ID, 2026).Earned.Equal(d("105")))
}

func TestAccrual_InitializeYear_SkipsExistingRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2022, time.March, 1))
	_, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)

	again, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 6)

	vl := f.leaveType(t, leave.CodeVacation)
	assert.True(t, f.balance(t, "emp-1", vl.ID, 2026).Earned.Equal(d("15")), "no double grant")
}

func TestAccrual_InitializeYear_UnknownEmployee(t *testing.T) {
	f := newFixture(t)
	_, err := f.accrual.InitializeYear(context.Background(), "ghost", 2026)
	assert.True(t, leave.IsNotFound(err))
}

// =============================================================================
// MONTHLY ACCRUAL
// =============================================================================

func TestAccrual_Monthly_CreditsVacationAndSick(t *testing.T) {
	// GIVEN: A December appointee with one month of initial accrual
	// WHEN: A monthly run executes
	// THEN: VL and SL each gain the configured 1.25 days

	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2026, time.December, 1))
	_, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)

	res, err := f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", 2026, 12)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	require.Len(t, res.Types, 2)

	vl := f.leaveType(t, leave.CodeVacation)
	bal := f.balance(t, "emp-1", vl.ID, 2026)
	assert.True(t, bal.Earned.Equal(d("2.5")), "1.25 initial + 1.25 accrued, got %s", bal.Earned)
}

func TestAccrual_Monthly_SecondRunSameMonthIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2026, time.December, 1))
	_, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)

	first, err := f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", 2026, 12)
	require.NoError(t, err)
	require.True(t, first.Applied)

	second, err := f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", 2026, 12)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Contains(t, second.Reason, "already processed")

	vl := f.leaveType(t, leave.CodeVacation)
	assert.True(t, f.balance(t, "emp-1", vl.ID, 2026).Earned.Equal(d("2.5")), "no double credit")
}

func TestAccrual_Monthly_ClampsAtAnnualCap(t *testing.T) {
	// GIVEN: VL earned at 14.5 against a 15-day cap
	// WHEN: A monthly run credits 1.25
	// THEN: Only 0.5 lands and the cap is flagged

	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2026, time.December, 1))
	_, err := f.accrual.InitializeYear(ctx, "emp-1", 2026)
	require.NoError(t, err)

	vl := f.leaveType(t, leave.CodeVacation)
	sl := f.leaveType(t, leave.CodeSick)
	for _, id := range []leave.LeaveTypeID{vl.ID, sl.ID} {
		_, err = f.store.ApplyBalanceDelta(ctx, "emp-1", id, 2026, leave.BalanceDelta{Earned: d("13.25")})
		require.NoError(t, err)
	}

	res, err := f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", 2026, 11)
	require.NoError(t, err)
	require.Len(t, res.Types, 2)
	for _, ta := range res.Types {
		assert.True(t, ta.Credited.Equal(d("0.5")), "%s credited %s", ta.Code, ta.Credited)
		assert.True(t, ta.CapReached)
	}

	bal := f.balance(t, "emp-1", vl.ID, 2026)
	assert.True(t, bal.Earned.Equal(d("15")), "earned never exceeds the cap")
}

func TestAccrual_Monthly_CapAlreadyReached_ZeroCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addEmployee(t, "emp-1", leave.NewDate(2022, time.March, 1))
	_, err := f.accrual.InitializeYear(ctx, "emp-1", 2026) // full 15/15
	require.NoError(t, err)

	res, err := f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", 2026, 6)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	for _, ta := range res.Types {
		assert.True(t, ta.Credited.IsZero())
		assert.True(t, ta.CapReached)
	}
}

func TestAccrual_Monthly_UninitializedYearIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "emp-1", leave.NewDate(2022, time.March, 1))

	res, err := f.accrual.ProcessMonthlyAccrual(context.Background(), "emp-1", 2026, 6)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Contains(t, res.Reason, "not initialized")
}

func TestAccrual_Monthly_InvalidMonth(t *testing.T) {
	f := newFixture(t)
	_, err := f.accrual.ProcessMonthlyAccrual(context.Background(), "emp-1", 2026, 13)
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestAccrual_Monthly_SerializesWithConcurrentApproval(t *testing.T) {
	// GIVEN: A 10-day VL balance with a pending 10-day application
	// WHEN: The monthly run and the approval execute at the same time
	// THEN: Both land and the final balance reflects exactly one credit
	//       and one deduction

	f := newFixture(t)
	ctx := context.Background()
	year := nextYear()

	f.addEmployee(t, "emp-1", leave.NewDate(year-3, time.January, 15))
	vl := f.setEarned(t, "emp-1", leave.CodeVacation, year, "10")
	f.setEarned(t, "emp-1", leave.CodeSick, year, "10")

	app, _, err := f.lifecycle.Create(ctx, newApp("emp-1", vl, weekday(year, time.Monday), 2, "10"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var approveErr, accrualErr error
	var res *leave.AccrualResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = f.lifecycle.Approve(ctx, app.ID, "hr-manager", "")
	}()
	go func() {
		defer wg.Done()
		res, accrualErr = f.accrual.ProcessMonthlyAccrual(ctx, "emp-1", year, 6)
	}()
	wg.Wait()

	require.NoError(t, approveErr)
	require.NoError(t, accrualErr)
	assert.True(t, res.Applied)

	bal := f.balance(t, "emp-1", vl, year)
	assert.True(t, bal.Earned.Equal(d("11.25")), "earned should be 11.25, got %s", bal.Earned)
	assert.True(t, bal.Used.Equal(d("10")))
	assert.True(t, bal.Current.Equal(d("1.25")))
	assert.True(t, bal.Current.Equal(bal.Derived()))
}
