/*
carryforward.go - Year-end rollover of unused VL/SL balances

PURPOSE:
  Moves up to max_carry_forward_days of unused vacation and sick leave
  into the next year's balance rows. Only VL and SL roll over. The
  source year's row is left untouched; carried days are recorded on the
  destination row's carried_forward column.

IDEMPOTENCY:
  One completed carry-forward run per (employee, fromYear) ever. The
  check and the run record share the transaction with the writes.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CarryForwardProcessor struct {
	store    TxStore
	settings Settings
	now      func() time.Time
}

func NewCarryForwardProcessor(store TxStore, settings Settings) *CarryForwardProcessor {
	return &CarryForwardProcessor{store: store, settings: settings, now: time.Now}
}

type CarryForwardResult struct {
	EmployeeID EmployeeID
	FromYear   int
	ToYear     int
	Applied    bool
	Reason     string
	Types      []TypeCarry
}

type TypeCarry struct {
	Code    string
	Carried decimal.Decimal
}

// ProcessCarryForward rolls unused VL/SL from fromYear into toYear.
func (p *CarryForwardProcessor) ProcessCarryForward(ctx context.Context, emp EmployeeID, fromYear, toYear int) (*CarryForwardResult, error) {
	if toYear <= fromYear {
		return nil, Validationf("target year %d must follow source year %d", toYear, fromYear)
	}

	result := &CarryForwardResult{EmployeeID: emp, FromYear: fromYear, ToYear: toYear}
	maxCarry := p.settings.MaxCarryForwardDays

	err := p.store.WithTx(ctx, func(s Store) error {
		done, err := s.HasCompletedRun(ctx, RunCarryForward, emp, fromYear, 0, time.Time{})
		if err != nil {
			return err
		}
		if done {
			result.Reason = fmt.Sprintf("carry-forward already processed for %d", fromYear)
			return nil
		}

		for _, code := range []string{CodeVacation, CodeSick} {
			lt, err := s.GetLeaveTypeByCode(ctx, code)
			if err != nil {
				return err
			}
			if lt == nil {
				continue
			}
			src, err := s.GetBalance(ctx, emp, lt.ID, fromYear)
			if err != nil {
				return err
			}
			if src == nil {
				continue
			}

			carry := src.Current
			if carry.GreaterThan(maxCarry) {
				carry = maxCarry
			}
			if !carry.IsPositive() {
				continue
			}

			if _, err := s.GetOrCreateBalance(ctx, emp, lt.ID, toYear); err != nil {
				return err
			}
			if _, err := s.ApplyBalanceDelta(ctx, emp, lt.ID, toYear, BalanceDelta{CarriedForward: carry}); err != nil {
				return err
			}
			result.Types = append(result.Types, TypeCarry{Code: code, Carried: carry})
		}

		result.Applied = true
		return s.RecordRun(ctx, RunRecord{
			ID:         uuid.NewString(),
			Kind:       RunCarryForward,
			EmployeeID: emp,
			Year:       fromYear,
			Status:     RunCompleted,
			CreatedAt:  p.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
