/*
monetize.go - Converting leave credits to cash

PURPOSE:
  Deducts days from a monetizable balance and appends an audit record.
  The deduction and the record commit together; there is never a
  monetized balance without its record, or the reverse.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MonetizationProcessor struct {
	store TxStore
	locks *BalanceLocks
	now   func() time.Time
}

func NewMonetizationProcessor(store TxStore, locks *BalanceLocks) *MonetizationProcessor {
	return &MonetizationProcessor{store: store, locks: locks, now: time.Now}
}

// Monetize converts days of one balance into a payable record.
func (p *MonetizationProcessor) Monetize(ctx context.Context, emp EmployeeID, lt LeaveTypeID, year int, days decimal.Decimal, reference string) (*MonetizationRecord, error) {
	if !days.IsPositive() {
		return nil, Validationf("days to monetize must be greater than zero")
	}

	leaveType, err := p.store.GetLeaveType(ctx, lt)
	if err != nil {
		return nil, err
	}
	if leaveType == nil {
		return nil, &NotFoundError{Kind: "leave type", Key: string(lt)}
	}
	if !leaveType.IsMonetizable {
		return nil, Validationf("leave type %s is not monetizable", leaveType.Code)
	}

	unlock := p.locks.Lock(emp, lt, year)
	defer unlock()

	var rec MonetizationRecord
	err = p.store.WithTx(ctx, func(s Store) error {
		bal, err := s.GetBalance(ctx, emp, lt, year)
		if err != nil {
			return err
		}
		if bal == nil {
			return &NotFoundError{
				Kind: "leave balance",
				Key:  fmt.Sprintf("%s/%s/%d", emp, lt, year),
			}
		}
		if bal.Current.LessThan(days) {
			return &InsufficientBalanceError{Available: bal.Current, Requested: days}
		}

		if _, err := s.ApplyBalanceDelta(ctx, emp, lt, year, BalanceDelta{Monetized: days}); err != nil {
			return err
		}
		rec = MonetizationRecord{
			ID:          uuid.NewString(),
			EmployeeID:  emp,
			LeaveTypeID: lt,
			Year:        year,
			Days:        days,
			Reference:   reference,
			CreatedAt:   p.now().UTC(),
		}
		return s.AppendMonetization(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
