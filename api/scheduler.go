/*
scheduler.go - Automated accrual and carry-forward scheduler

PURPOSE:
  Periodically runs the monthly accrual for every employee, and in
  January additionally runs the previous year's carry-forward. The
  processors' idempotency guards make repeated ticks harmless: a month
  already credited is a no-op, a year already carried is a no-op.

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewBatchScheduler(h, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - leave/accrual.go: The idempotency guards this relies on
  - handlers.go: Manual admin endpoints for the same operations
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BatchScheduler drives accrual and carry-forward on a timer.
type BatchScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewBatchScheduler(handler *Handler, log zerolog.Logger) *BatchScheduler {
	return &BatchScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		log:           log,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler goroutine.
func (bs *BatchScheduler) Start() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.Enabled {
		bs.log.Info().Msg("scheduler disabled, not starting")
		return
	}

	bs.ticker = time.NewTicker(bs.CheckInterval)
	bs.wg.Add(1)
	go bs.run()

	bs.log.Info().Dur("interval", bs.CheckInterval).Msg("scheduler started")
}

// Stop stops the scheduler and waits for the current pass to finish.
func (bs *BatchScheduler) Stop() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.ticker != nil {
		bs.ticker.Stop()
		close(bs.stop)
		bs.wg.Wait()
		bs.log.Info().Msg("scheduler stopped")
	}
}

func (bs *BatchScheduler) run() {
	defer bs.wg.Done()

	// Run immediately on start
	bs.processAll()

	for {
		select {
		case <-bs.ticker.C:
			bs.processAll()
		case <-bs.stop:
			return
		}
	}
}

func (bs *BatchScheduler) processAll() {
	ctx := context.Background()
	now := time.Now()

	employees, err := bs.Handler.Store.ListEmployees(ctx)
	if err != nil {
		bs.log.Error().Err(err).Msg("scheduler: listing employees failed")
		return
	}

	credited := 0
	carried := 0
	for _, emp := range employees {
		if emp.EmploymentStatus != "active" {
			continue
		}

		result, err := bs.Handler.Accrual.ProcessMonthlyAccrual(ctx, emp.ID, now.Year(), int(now.Month()))
		if err != nil {
			bs.log.Error().Err(err).Str("employee", string(emp.ID)).Msg("scheduler: accrual failed")
		} else if result.Applied {
			credited++
		}

		// January: roll the previous year forward.
		if now.Month() == time.January {
			cf, err := bs.Handler.CarryForward.ProcessCarryForward(ctx, emp.ID, now.Year()-1, now.Year())
			if err != nil {
				bs.log.Error().Err(err).Str("employee", string(emp.ID)).Msg("scheduler: carry-forward failed")
			} else if cf.Applied {
				carried++
			}
		}
	}

	bs.log.Info().
		Int("employees", len(employees)).
		Int("accrued", credited).
		Int("carried_forward", carried).
		Msg("scheduler pass complete")
}
