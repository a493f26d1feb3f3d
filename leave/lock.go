package leave

import "sync"

// =============================================================================
// BALANCE LOCKS - Per-balance mutual exclusion
// =============================================================================

// balanceKey identifies one balance row.
type balanceKey struct {
	emp  EmployeeID
	lt   LeaveTypeID
	year int
}

// BalanceLocks serializes mutations of the same (employee, leave type,
// year) balance across goroutines. The sqlite transaction gives
// atomicity; this gives ordering, so two concurrent approvals against
// one balance resolve as approve-then-reject instead of racing reads.
type BalanceLocks struct {
	mu    sync.Mutex
	locks map[balanceKey]*sync.Mutex
}

func NewBalanceLocks() *BalanceLocks {
	return &BalanceLocks{locks: make(map[balanceKey]*sync.Mutex)}
}

// Lock acquires the mutex for one balance and returns its unlock func.
func (b *BalanceLocks) Lock(emp EmployeeID, lt LeaveTypeID, year int) func() {
	key := balanceKey{emp: emp, lt: lt, year: year}
	b.mu.Lock()
	m, ok := b.locks[key]
	if !ok {
		m = &sync.Mutex{}
		b.locks[key] = m
	}
	b.mu.Unlock()
	m.Lock()
	return m.Unlock
}
