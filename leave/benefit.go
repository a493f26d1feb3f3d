/*
benefit.go - Terminal leave benefit calculation and claims

PURPOSE:
  Computes the lump-sum payout for a separating employee:

    amount = total credits x highest monthly salary x constant factor

  Credits sum earned - used - monetized across every balance year;
  carried-forward days are excluded because they were already counted
  in their year of origin. The highest salary considers both the
  employee's current salary and every historical service record.

  Calculate is pure lookup plus arithmetic. FileClaim freezes a
  calculation into a pending claim; MarkPaid settles it through the
  same transition union the application lifecycle uses.
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	factorLowerBound = decimal.RequireFromString("0.1")
	factorUpperBound = decimal.RequireFromString("2.0")
)

type BenefitCalculator struct {
	store    TxStore
	settings Settings
	now      func() time.Time
}

func NewBenefitCalculator(store TxStore, settings Settings) *BenefitCalculator {
	return &BenefitCalculator{store: store, settings: settings, now: time.Now}
}

// Calculate computes the benefit without persisting anything.
func (c *BenefitCalculator) Calculate(ctx context.Context, emp EmployeeID, claimDate, separationDate Date) (*TerminalBenefit, error) {
	if claimDate.After(separationDate) {
		return nil, Validationf("claim date %s cannot be after separation date %s", claimDate, separationDate)
	}
	factor := c.settings.TLBConstantFactor
	if factor.LessThan(factorLowerBound) || factor.GreaterThan(factorUpperBound) {
		return nil, Validationf("constant factor %s out of range [%s, %s]", factor, factorLowerBound, factorUpperBound)
	}

	employee, err := c.store.GetEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &NotFoundError{Kind: "employee", Key: string(emp)}
	}

	balances, err := c.store.ListBalances(ctx, emp)
	if err != nil {
		return nil, err
	}
	credits := decimal.Zero
	for _, b := range balances {
		credits = credits.Add(b.Credits())
	}

	highest, err := c.store.HighestServiceSalary(ctx, emp)
	if err != nil {
		return nil, err
	}
	if employee.MonthlySalary.GreaterThan(highest) {
		highest = employee.MonthlySalary
	}

	if !credits.IsPositive() {
		return nil, Validationf("total leave credits must be positive, got %s", credits.StringFixed(2))
	}
	if !highest.IsPositive() {
		return nil, Validationf("highest monthly salary must be positive, got %s", highest.StringFixed(2))
	}

	return &TerminalBenefit{
		EmployeeID:     emp,
		ClaimDate:      claimDate,
		SeparationDate: separationDate,
		TotalCredits:   credits,
		HighestSalary:  highest,
		ConstantFactor: factor,
		Amount:         credits.Mul(highest).Mul(factor).Round(2),
	}, nil
}

// FileClaim computes the benefit and persists it as a pending claim.
func (c *BenefitCalculator) FileClaim(ctx context.Context, emp EmployeeID, claimDate, separationDate Date) (*TLBClaim, error) {
	benefit, err := c.Calculate(ctx, emp, claimDate, separationDate)
	if err != nil {
		return nil, err
	}
	claim := &TLBClaim{
		ID:             uuid.NewString(),
		EmployeeID:     emp,
		ClaimDate:      claimDate,
		SeparationDate: separationDate,
		TotalCredits:   benefit.TotalCredits,
		HighestSalary:  benefit.HighestSalary,
		ConstantFactor: benefit.ConstantFactor,
		Amount:         benefit.Amount,
		Status:         ClaimPending,
		CreatedAt:      c.now().UTC(),
	}
	err = c.store.WithTx(ctx, func(s Store) error {
		return s.SaveClaim(ctx, claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// MarkPaid settles a pending claim.
func (c *BenefitCalculator) MarkPaid(ctx context.Context, claimID, payer, reference string) (*TLBClaim, error) {
	var paid *TLBClaim
	err := c.store.WithTx(ctx, func(s Store) error {
		claim, err := s.GetClaim(ctx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return &NotFoundError{Kind: "claim", Key: claimID}
		}
		if claim.Status != ClaimPending {
			return &StateConflictError{ID: claimID, Current: string(claim.Status), Attempted: "pay"}
		}
		if err := s.ApplyClaimTransition(ctx, claimID, PayTransition{
			Payer:     payer,
			At:        c.now().UTC(),
			Reference: reference,
		}); err != nil {
			return err
		}
		paid, err = s.GetClaim(ctx, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}
