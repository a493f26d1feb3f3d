/*
lifecycle.go - Application lifecycle: create, approve, reject, cancel

PURPOSE:
  Drives an application through pending -> approved/rejected/cancelled.
  Approve is the only transition that touches a balance, and the status
  change and the deduction commit in one transaction: an approved
  application with an untouched balance can never be observed.

CONCURRENCY:
  Approve takes the per-balance lock before opening its transaction and
  re-reads the application inside it, so two racing approvals against
  the same balance serialize and the loser sees a terminal status.

SEE ALSO:
  - validator.go: Eligibility checks run at creation
  - store.go: The Transition union persisted here
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Lifecycle struct {
	store TxStore
	locks *BalanceLocks
	now   func() time.Time
}

func NewLifecycle(store TxStore, locks *BalanceLocks) *Lifecycle {
	return &Lifecycle{
		store: store,
		locks: locks,
		now:   time.Now,
	}
}

// Create validates a draft application and persists it as pending.
// Returned warnings are advisory; they never block creation. A pure
// balance shortfall comes back as *InsufficientBalanceError, any other
// failed check as *ValidationError listing everything that failed.
func (l *Lifecycle) Create(ctx context.Context, app *Application) (*Application, []string, error) {
	var warnings []string
	err := l.store.WithTx(ctx, func(s Store) error {
		lt, err := s.GetLeaveType(ctx, app.LeaveTypeID)
		if err != nil {
			return err
		}
		if lt == nil {
			return &NotFoundError{Kind: "leave type", Key: string(app.LeaveTypeID)}
		}
		if emp, err := s.GetEmployee(ctx, app.EmployeeID); err != nil {
			return err
		} else if emp == nil {
			return &NotFoundError{Kind: "employee", Key: string(app.EmployeeID)}
		}

		bal, err := s.GetOrCreateBalance(ctx, app.EmployeeID, app.LeaveTypeID, app.Year())
		if err != nil {
			return err
		}

		// The validator reads through s so its overlap and quota queries
		// run on the open transaction's connection.
		v := NewValidator(s)
		v.now = l.now
		res, err := v.Validate(ctx, app, lt, bal)
		if err != nil {
			return err
		}
		warnings = res.Warnings
		if !res.OK() {
			if res.Shortfall != nil && len(res.Errors) == 1 {
				return res.Shortfall
			}
			return &ValidationError{Messages: res.Errors}
		}

		number, err := s.NextApplicationNumber(ctx, app.Year())
		if err != nil {
			return err
		}
		now := l.now().UTC()
		app.ID = uuid.NewString()
		app.Number = number
		app.Status = StatusPending
		app.CreatedAt = now
		app.UpdatedAt = now
		return s.SaveApplication(ctx, app)
	})
	if err != nil {
		return nil, warnings, err
	}
	return app, warnings, nil
}

// Approve re-checks the balance, deducts the requested days, and marks
// the application approved, all in one transaction.
func (l *Lifecycle) Approve(ctx context.Context, id, reviewer, notes string) (*Application, error) {
	app, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(app.EmployeeID, app.LeaveTypeID, app.Year())
	defer unlock()

	var approved *Application
	err = l.store.WithTx(ctx, func(s Store) error {
		app, err := l.requirePending(ctx, s, id, ApproveTransition{})
		if err != nil {
			return err
		}

		// Approvals that landed after creation count against the SPL
		// quota, so re-check it here before touching the balance.
		lt, err := s.GetLeaveType(ctx, app.LeaveTypeID)
		if err != nil {
			return err
		}
		if lt != nil && lt.Code == CodeSpecialPrivilege && lt.HasCap() {
			used, err := s.SumApprovedDays(ctx, app.EmployeeID, app.LeaveTypeID, app.Year())
			if err != nil {
				return err
			}
			if msg, exceeded := splQuotaExceeded(used, app.DaysRequested, lt.Cap()); exceeded {
				return &ValidationError{Messages: []string{msg}}
			}
		}

		bal, err := s.GetBalance(ctx, app.EmployeeID, app.LeaveTypeID, app.Year())
		if err != nil {
			return err
		}
		if bal == nil {
			return &NotFoundError{
				Kind: "leave balance",
				Key:  fmt.Sprintf("%s/%s/%d", app.EmployeeID, app.LeaveTypeID, app.Year()),
			}
		}
		if bal.Current.LessThan(app.DaysRequested) {
			return &InsufficientBalanceError{Available: bal.Current, Requested: app.DaysRequested}
		}

		if _, err := s.ApplyBalanceDelta(ctx, app.EmployeeID, app.LeaveTypeID, app.Year(),
			BalanceDelta{Used: app.DaysRequested}); err != nil {
			return err
		}
		if err := s.ApplyTransition(ctx, id, ApproveTransition{
			Reviewer: reviewer,
			At:       l.now().UTC(),
			Notes:    notes,
		}); err != nil {
			return err
		}
		approved, err = s.GetApplication(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Reject marks a pending application rejected. No balance movement.
func (l *Lifecycle) Reject(ctx context.Context, id, reviewer, notes string) (*Application, error) {
	return l.transition(ctx, id, RejectTransition{Reviewer: reviewer, At: l.now().UTC(), Notes: notes})
}

// Cancel lets the applicant withdraw a pending application. Approved
// applications cannot be cancelled; the days are already deducted.
func (l *Lifecycle) Cancel(ctx context.Context, id string) (*Application, error) {
	return l.transition(ctx, id, CancelTransition{At: l.now().UTC()})
}

func (l *Lifecycle) transition(ctx context.Context, id string, tr Transition) (*Application, error) {
	var out *Application
	err := l.store.WithTx(ctx, func(s Store) error {
		if _, err := l.requirePending(ctx, s, id, tr); err != nil {
			return err
		}
		if err := s.ApplyTransition(ctx, id, tr); err != nil {
			return err
		}
		var err error
		out, err = s.GetApplication(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Lifecycle) load(ctx context.Context, id string) (*Application, error) {
	app, err := l.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Kind: "application", Key: id}
	}
	return app, nil
}

func (l *Lifecycle) requirePending(ctx context.Context, s Store, id string, tr Transition) (*Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Kind: "application", Key: id}
	}
	if app.Status != StatusPending {
		return nil, &StateConflictError{ID: app.Number, Current: string(app.Status), Attempted: tr.Name()}
	}
	return app, nil
}
