/*
Package sqlite provides the SQLite-backed implementation of the leave
ledger storage interfaces.

PURPOSE:
  Implements leave.TxStore. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:          Directory snapshot plus salary history
  leave_types:        The catalog (VL, SL, FL, ML, PL, SPL, ...)
  leave_balances:     One row per (employee, leave type, year)
  leave_applications: Requests and their lifecycle state
  monetizations:      Append-only audit of credit-to-cash conversions
  ledger_runs:        Idempotency markers for accrual/carry-forward
  settings:           Tunable numeric parameters
  tlb_claims:         Terminal leave benefit claims

APPEND-ONLY ENFORCEMENT:
  monetizations has no UPDATE or DELETE statements anywhere in this
  package. Balance corrections happen through compensating deltas.

CONCURRENCY:
  The connection pool is capped at one connection, so statements
  serialize at the driver. WithTx additionally holds a mutex for the
  duration of a transaction; the single writer plus the engine's
  per-balance locks give the serialization the approve path needs.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better crash
  recovery and non-blocking readers.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements every leave.Store method against a dbtx. The
// Store embeds it bound to the *sql.DB; WithTx rebinds it to a *sql.Tx.
type queries struct {
	db dbtx
}

// Store implements leave.TxStore using SQLite.
type Store struct {
	queries
	sqlDB *sql.DB
	mu    sync.Mutex
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single connection: the engine relies on statement-level
	// serialization, and ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{db: db}, sqlDB: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		appointment_date TEXT NOT NULL,
		employment_status TEXT NOT NULL DEFAULT 'active',
		monthly_salary TEXT NOT NULL DEFAULT '0',
		separation_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS service_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		monthly_salary TEXT NOT NULL,
		effective_from TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_service_records_employee
		ON service_records(employee_id);

	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		max_days_per_year TEXT,
		is_monetizable INTEGER NOT NULL DEFAULT 0,
		requires_medical_cert INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		year INTEGER NOT NULL,
		earned TEXT NOT NULL DEFAULT '0',
		used TEXT NOT NULL DEFAULT '0',
		monetized TEXT NOT NULL DEFAULT '0',
		carried_forward TEXT NOT NULL DEFAULT '0',
		current TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, leave_type_id, year)
	);

	CREATE INDEX IF NOT EXISTS idx_balances_employee
		ON leave_balances(employee_id, year);

	CREATE TABLE IF NOT EXISTS leave_applications (
		id TEXT PRIMARY KEY,
		application_number TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_requested TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		reviewed_by TEXT,
		reviewed_at TEXT,
		review_notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: overlap checks scan open applications per employee
	CREATE INDEX IF NOT EXISTS idx_applications_employee_status
		ON leave_applications(employee_id, status);
	CREATE INDEX IF NOT EXISTS idx_applications_number
		ON leave_applications(application_number);

	CREATE TABLE IF NOT EXISTS monetizations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		days TEXT NOT NULL,
		reference TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_monetizations_employee
		ON monetizations(employee_id);

	CREATE TABLE IF NOT EXISTS ledger_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		detail TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(kind, employee_id, year, month)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tlb_claims (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		claim_date TEXT NOT NULL,
		separation_date TEXT NOT NULL,
		total_credits TEXT NOT NULL,
		highest_salary TEXT NOT NULL,
		constant_factor TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_by TEXT,
		paid_at TEXT,
		payment_ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claims_employee
		ON tlb_claims(employee_id);
	`
	_, err := s.sqlDB.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn against a transactional view of the store.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	view := &txView{queries{db: tx}}
	if err := fn(view); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// txView is the Store bound to an open transaction.
type txView struct {
	queries
}

// Reset clears every table. Demo scenario loading only; there is no
// call path to it from the engine.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"tlb_claims", "ledger_runs", "monetizations", "leave_applications",
		"leave_balances", "service_records", "employees", "leave_types", "settings",
	} {
		if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// BALANCES
// =============================================================================

const balanceColumns = `id, employee_id, leave_type_id, year, earned, used, monetized, carried_forward, current, updated_at`

func (q *queries) GetBalance(ctx context.Context, emp leave.EmployeeID, lt leave.LeaveTypeID, year int) (*leave.Balance, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+balanceColumns+` FROM leave_balances
		WHERE employee_id = ? AND leave_type_id = ? AND year = ?`,
		string(emp), string(lt), year)
	return scanBalance(row)
}

func (q *queries) GetOrCreateBalance(ctx context.Context, emp leave.EmployeeID, lt leave.LeaveTypeID, year int) (*leave.Balance, error) {
	bal, err := q.GetBalance(ctx, emp, lt, year)
	if err != nil {
		return nil, err
	}
	if bal != nil {
		return bal, nil
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO leave_balances (id, employee_id, leave_type_id, year, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), string(emp), string(lt), year, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}
	return q.GetBalance(ctx, emp, lt, year)
}

func (q *queries) ListBalances(ctx context.Context, emp leave.EmployeeID) ([]leave.Balance, error) {
	return q.queryBalances(ctx, `
		SELECT `+balanceColumns+` FROM leave_balances
		WHERE employee_id = ? ORDER BY year, leave_type_id`, string(emp))
}

func (q *queries) ListBalancesForYear(ctx context.Context, emp leave.EmployeeID, year int) ([]leave.Balance, error) {
	return q.queryBalances(ctx, `
		SELECT `+balanceColumns+` FROM leave_balances
		WHERE employee_id = ? AND year = ? ORDER BY leave_type_id`, string(emp), year)
}

// ApplyBalanceDelta is the single balance write path. It recomputes the
// current balance from the adjusted components and refuses to persist a
// negative result.
func (q *queries) ApplyBalanceDelta(ctx context.Context, emp leave.EmployeeID, lt leave.LeaveTypeID, year int, delta leave.BalanceDelta) (*leave.Balance, error) {
	bal, err := q.GetBalance(ctx, emp, lt, year)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return nil, &leave.NotFoundError{
			Kind: "leave balance",
			Key:  fmt.Sprintf("%s/%s/%d", emp, lt, year),
		}
	}

	bal.Earned = bal.Earned.Add(delta.Earned)
	bal.Used = bal.Used.Add(delta.Used)
	bal.Monetized = bal.Monetized.Add(delta.Monetized)
	bal.CarriedForward = bal.CarriedForward.Add(delta.CarriedForward)
	bal.Current = bal.Derived()

	if bal.Current.IsNegative() || bal.Earned.IsNegative() || bal.Used.IsNegative() ||
		bal.Monetized.IsNegative() || bal.CarriedForward.IsNegative() {
		return nil, &leave.InvariantError{
			EmployeeID:  emp,
			LeaveTypeID: lt,
			Year:        year,
			Current:     bal.Current,
		}
	}

	bal.UpdatedAt = time.Now().UTC()
	_, err = q.db.ExecContext(ctx, `
		UPDATE leave_balances
		SET earned = ?, used = ?, monetized = ?, carried_forward = ?, current = ?, updated_at = ?
		WHERE employee_id = ? AND leave_type_id = ? AND year = ?`,
		bal.Earned.String(), bal.Used.String(), bal.Monetized.String(),
		bal.CarriedForward.String(), bal.Current.String(),
		bal.UpdatedAt.Format(timeFormat),
		string(emp), string(lt), year)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	return bal, nil
}

func (q *queries) queryBalances(ctx context.Context, query string, args ...any) ([]leave.Balance, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Balance
	for rows.Next() {
		bal, err := scanBalanceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *bal)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalanceFrom(sc rowScanner) (*leave.Balance, error) {
	var b leave.Balance
	var emp, lt, earned, used, monetized, carried, current, updatedAt string
	if err := sc.Scan(&b.ID, &emp, &lt, &b.Year, &earned, &used, &monetized, &carried, &current, &updatedAt); err != nil {
		return nil, err
	}
	b.EmployeeID = leave.EmployeeID(emp)
	b.LeaveTypeID = leave.LeaveTypeID(lt)
	b.Earned = mustDecimal(earned)
	b.Used = mustDecimal(used)
	b.Monetized = mustDecimal(monetized)
	b.CarriedForward = mustDecimal(carried)
	b.Current = mustDecimal(current)
	b.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &b, nil
}

func scanBalance(row *sql.Row) (*leave.Balance, error) {
	bal, err := scanBalanceFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return bal, err
}

func scanBalanceRow(rows *sql.Rows) (*leave.Balance, error) {
	return scanBalanceFrom(rows)
}

// =============================================================================
// APPLICATIONS
// =============================================================================

const applicationColumns = `id, application_number, employee_id, leave_type_id, start_date, end_date, days_requested, reason, status, reviewed_by, reviewed_at, review_notes, created_at, updated_at`

func (q *queries) SaveApplication(ctx context.Context, app *leave.Application) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.Number, string(app.EmployeeID), string(app.LeaveTypeID),
		app.StartDate.String(), app.EndDate.String(),
		app.DaysRequested.String(), nullString(app.Reason),
		string(app.Status), nullString(app.ReviewedBy), nullTime(app.ReviewedAt),
		nullString(app.ReviewNotes),
		app.CreatedAt.Format(timeFormat), app.UpdatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}

func (q *queries) GetApplication(ctx context.Context, id string) (*leave.Application, error) {
	apps, err := q.queryApplications(ctx, `
		SELECT `+applicationColumns+` FROM leave_applications WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (q *queries) ListApplications(ctx context.Context, emp leave.EmployeeID) ([]leave.Application, error) {
	return q.queryApplications(ctx, `
		SELECT `+applicationColumns+` FROM leave_applications
		WHERE employee_id = ? ORDER BY created_at DESC`, string(emp))
}

func (q *queries) FindOverlapping(ctx context.Context, emp leave.EmployeeID, start, end leave.Date, excludeID string) ([]leave.Application, error) {
	// Dates are stored as YYYY-MM-DD, so string comparison orders them.
	return q.queryApplications(ctx, `
		SELECT `+applicationColumns+` FROM leave_applications
		WHERE employee_id = ?
		  AND status IN ('pending', 'approved')
		  AND id != ?
		  AND start_date <= ?
		  AND end_date >= ?
		ORDER BY start_date`,
		string(emp), excludeID, end.String(), start.String())
}

func (q *queries) SumApprovedDays(ctx context.Context, emp leave.EmployeeID, lt leave.LeaveTypeID, year int) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT days_requested FROM leave_applications
		WHERE employee_id = ? AND leave_type_id = ? AND status = 'approved'
		  AND start_date >= ? AND start_date <= ?`,
		string(emp), string(lt),
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var days string
		if err := rows.Scan(&days); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(mustDecimal(days))
	}
	return total, rows.Err()
}

func (q *queries) NextApplicationNumber(ctx context.Context, year int) (string, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_applications WHERE application_number LIKE ?`,
		fmt.Sprintf("LA-%d-%%", year)).Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LA-%d-%06d", year, count+1), nil
}

// ApplyTransition persists exactly the columns the transition variant
// carries. Pay is not a valid application transition.
func (q *queries) ApplyTransition(ctx context.Context, id string, tr leave.Transition) error {
	var res sql.Result
	var err error
	switch t := tr.(type) {
	case leave.ApproveTransition:
		res, err = q.db.ExecContext(ctx, `
			UPDATE leave_applications
			SET status = 'approved', reviewed_by = ?, reviewed_at = ?, review_notes = ?, updated_at = ?
			WHERE id = ?`,
			t.Reviewer, t.At.Format(timeFormat), nullString(t.Notes), t.At.Format(timeFormat), id)
	case leave.RejectTransition:
		res, err = q.db.ExecContext(ctx, `
			UPDATE leave_applications
			SET status = 'rejected', reviewed_by = ?, reviewed_at = ?, review_notes = ?, updated_at = ?
			WHERE id = ?`,
			t.Reviewer, t.At.Format(timeFormat), nullString(t.Notes), t.At.Format(timeFormat), id)
	case leave.CancelTransition:
		res, err = q.db.ExecContext(ctx, `
			UPDATE leave_applications
			SET status = 'cancelled', updated_at = ?
			WHERE id = ?`,
			t.At.Format(timeFormat), id)
	default:
		return fmt.Errorf("transition %q is not valid for applications", tr.Name())
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s transition: %w", tr.Name(), err)
	}
	return requireOneRow(res, "application", id)
}

func (q *queries) queryApplications(ctx context.Context, query string, args ...any) ([]leave.Application, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Application
	for rows.Next() {
		var a leave.Application
		var emp, lt, start, end, days, status, createdAt, updatedAt string
		var reason, reviewedBy, reviewedAt, reviewNotes sql.NullString
		if err := rows.Scan(&a.ID, &a.Number, &emp, &lt, &start, &end, &days,
			&reason, &status, &reviewedBy, &reviewedAt, &reviewNotes,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		a.EmployeeID = leave.EmployeeID(emp)
		a.LeaveTypeID = leave.LeaveTypeID(lt)
		a.StartDate, _ = leave.ParseDate(start)
		a.EndDate, _ = leave.ParseDate(end)
		a.DaysRequested = mustDecimal(days)
		a.Reason = reason.String
		a.Status = leave.ApplicationStatus(status)
		a.ReviewedBy = reviewedBy.String
		a.ReviewNotes = reviewNotes.String
		if reviewedAt.Valid {
			if t, err := time.Parse(timeFormat, reviewedAt.String); err == nil {
				a.ReviewedAt = &t
			}
		}
		a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		a.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// LEAVE TYPE CATALOG
// =============================================================================

const leaveTypeColumns = `id, code, name, description, max_days_per_year, is_monetizable, requires_medical_cert, created_at`

func (q *queries) SaveLeaveType(ctx context.Context, lt *leave.LeaveType) error {
	if lt.Code == "" || len(lt.Code) > leave.MaxLeaveTypeCodeLen {
		return leave.Validationf("leave type code must be 1-%d characters", leave.MaxLeaveTypeCodeLen)
	}
	var maxDays sql.NullString
	if lt.MaxDaysPerYear != nil {
		maxDays = sql.NullString{String: lt.MaxDaysPerYear.String(), Valid: true}
	}
	if lt.CreatedAt.IsZero() {
		lt.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_types (`+leaveTypeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			description = excluded.description,
			max_days_per_year = excluded.max_days_per_year,
			is_monetizable = excluded.is_monetizable,
			requires_medical_cert = excluded.requires_medical_cert`,
		string(lt.ID), lt.Code, lt.Name, nullString(lt.Description), maxDays,
		boolInt(lt.IsMonetizable), boolInt(lt.RequiresMedicalCert),
		lt.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save leave type: %w", err)
	}
	return nil
}

func (q *queries) GetLeaveType(ctx context.Context, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	return q.getLeaveType(ctx, `
		SELECT `+leaveTypeColumns+` FROM leave_types WHERE id = ?`, string(id))
}

func (q *queries) GetLeaveTypeByCode(ctx context.Context, code string) (*leave.LeaveType, error) {
	return q.getLeaveType(ctx, `
		SELECT `+leaveTypeColumns+` FROM leave_types WHERE code = ?`, code)
}

func (q *queries) getLeaveType(ctx context.Context, query string, arg any) (*leave.LeaveType, error) {
	types, err := q.queryLeaveTypes(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (q *queries) ListLeaveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	return q.queryLeaveTypes(ctx, `
		SELECT `+leaveTypeColumns+` FROM leave_types ORDER BY code`)
}

func (q *queries) DeleteLeaveType(ctx context.Context, id leave.LeaveTypeID) error {
	var refs int
	err := q.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM leave_balances WHERE leave_type_id = ?)
		     + (SELECT COUNT(*) FROM leave_applications WHERE leave_type_id = ?)`,
		string(id), string(id)).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: %d records reference leave type %s", leave.ErrLeaveTypeReferenced, refs, id)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM leave_types WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireOneRow(res, "leave type", string(id))
}

func (q *queries) queryLeaveTypes(ctx context.Context, query string, args ...any) ([]leave.LeaveType, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveType
	for rows.Next() {
		var lt leave.LeaveType
		var id, createdAt string
		var description, maxDays sql.NullString
		var monetizable, medical int
		if err := rows.Scan(&id, &lt.Code, &lt.Name, &description, &maxDays,
			&monetizable, &medical, &createdAt); err != nil {
			return nil, err
		}
		lt.ID = leave.LeaveTypeID(id)
		lt.Description = description.String
		if maxDays.Valid {
			d := mustDecimal(maxDays.String)
			lt.MaxDaysPerYear = &d
		}
		lt.IsMonetizable = monetizable != 0
		lt.RequiresMedicalCert = medical != 0
		lt.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, lt)
	}
	return out, rows.Err()
}

// =============================================================================
// MONETIZATIONS (append-only)
// =============================================================================

func (q *queries) AppendMonetization(ctx context.Context, rec leave.MonetizationRecord) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO monetizations (id, employee_id, leave_type_id, year, days, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.EmployeeID), string(rec.LeaveTypeID), rec.Year,
		rec.Days.String(), nullString(rec.Reference), rec.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to append monetization: %w", err)
	}
	return nil
}

func (q *queries) ListMonetizations(ctx context.Context, emp leave.EmployeeID) ([]leave.MonetizationRecord, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_type_id, year, days, reference, created_at
		FROM monetizations WHERE employee_id = ? ORDER BY created_at`,
		string(emp))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.MonetizationRecord
	for rows.Next() {
		var rec leave.MonetizationRecord
		var empID, lt, days, createdAt string
		var reference sql.NullString
		if err := rows.Scan(&rec.ID, &empID, &lt, &rec.Year, &days, &reference, &createdAt); err != nil {
			return nil, err
		}
		rec.EmployeeID = leave.EmployeeID(empID)
		rec.LeaveTypeID = leave.LeaveTypeID(lt)
		rec.Days = mustDecimal(days)
		rec.Reference = reference.String
		rec.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// BATCH RUNS
// =============================================================================

func (q *queries) RecordRun(ctx context.Context, run leave.RunRecord) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO ledger_runs (id, kind, employee_id, year, month, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, employee_id, year, month) DO UPDATE SET
			status = excluded.status,
			detail = excluded.detail,
			created_at = excluded.created_at`,
		run.ID, string(run.Kind), string(run.EmployeeID), run.Year, run.Month,
		string(run.Status), nullString(run.Detail), run.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (q *queries) HasCompletedRun(ctx context.Context, kind leave.RunKind, emp leave.EmployeeID, year, month int, since time.Time) (bool, error) {
	var createdAt string
	err := q.db.QueryRowContext(ctx, `
		SELECT created_at FROM ledger_runs
		WHERE kind = ? AND employee_id = ? AND year = ? AND month = ? AND status = ?`,
		string(kind), string(emp), year, month, string(leave.RunCompleted)).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if since.IsZero() {
		return true, nil
	}
	at, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return false, err
	}
	return !at.Before(since), nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (q *queries) GetSetting(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	var value string
	err := q.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("setting %s holds non-numeric value %q", key, value)
	}
	return d, true, nil
}

func (q *queries) PutSetting(ctx context.Context, key string, value decimal.Decimal) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value.String())
	return err
}

func (q *queries) ListSettings(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = mustDecimal(value)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, email, appointment_date, employment_status, monthly_salary, separation_date, created_at`

func (q *queries) SaveEmployee(ctx context.Context, e *leave.Employee) error {
	var separation sql.NullString
	if e.SeparationDate != nil {
		separation = sql.NullString{String: e.SeparationDate.String(), Valid: true}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = "active"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			appointment_date = excluded.appointment_date,
			employment_status = excluded.employment_status,
			monthly_salary = excluded.monthly_salary,
			separation_date = excluded.separation_date`,
		string(e.ID), e.Name, nullString(e.Email), e.AppointmentDate.String(),
		e.EmploymentStatus, e.MonthlySalary.String(), separation,
		e.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (q *queries) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	emps, err := q.queryEmployees(ctx, `
		SELECT `+employeeColumns+` FROM employees WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(emps) == 0 {
		return nil, nil
	}
	return &emps[0], nil
}

func (q *queries) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	return q.queryEmployees(ctx, `
		SELECT `+employeeColumns+` FROM employees ORDER BY name`)
}

func (q *queries) AddServiceRecord(ctx context.Context, rec leave.ServiceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO service_records (id, employee_id, monthly_salary, effective_from)
		VALUES (?, ?, ?, ?)`,
		rec.ID, string(rec.EmployeeID), rec.MonthlySalary.String(), rec.EffectiveFrom.String())
	if err != nil {
		return fmt.Errorf("failed to add service record: %w", err)
	}
	return nil
}

func (q *queries) HighestServiceSalary(ctx context.Context, emp leave.EmployeeID) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT monthly_salary FROM service_records WHERE employee_id = ?`, string(emp))
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	highest := decimal.Zero
	for rows.Next() {
		var salary string
		if err := rows.Scan(&salary); err != nil {
			return decimal.Zero, err
		}
		if d := mustDecimal(salary); d.GreaterThan(highest) {
			highest = d
		}
	}
	return highest, rows.Err()
}

func (q *queries) queryEmployees(ctx context.Context, query string, args ...any) ([]leave.Employee, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Employee
	for rows.Next() {
		var e leave.Employee
		var id, appointment, salary, createdAt string
		var email, separation sql.NullString
		if err := rows.Scan(&id, &e.Name, &email, &appointment, &e.EmploymentStatus,
			&salary, &separation, &createdAt); err != nil {
			return nil, err
		}
		e.ID = leave.EmployeeID(id)
		e.Email = email.String
		e.AppointmentDate, _ = leave.ParseDate(appointment)
		e.MonthlySalary = mustDecimal(salary)
		if separation.Valid {
			if d, err := leave.ParseDate(separation.String); err == nil {
				e.SeparationDate = &d
			}
		}
		e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// TERMINAL BENEFIT CLAIMS
// =============================================================================

const claimColumns = `id, employee_id, claim_date, separation_date, total_credits, highest_salary, constant_factor, amount, status, paid_by, paid_at, payment_ref, created_at`

func (q *queries) SaveClaim(ctx context.Context, c *leave.TLBClaim) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO tlb_claims (`+claimColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.EmployeeID), c.ClaimDate.String(), c.SeparationDate.String(),
		c.TotalCredits.String(), c.HighestSalary.String(), c.ConstantFactor.String(),
		c.Amount.String(), string(c.Status), nullString(c.PaidBy), nullTime(c.PaidAt),
		nullString(c.PaymentRef), c.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

func (q *queries) GetClaim(ctx context.Context, id string) (*leave.TLBClaim, error) {
	claims, err := q.queryClaims(ctx, `
		SELECT `+claimColumns+` FROM tlb_claims WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, nil
	}
	return &claims[0], nil
}

func (q *queries) ListClaims(ctx context.Context, emp leave.EmployeeID) ([]leave.TLBClaim, error) {
	return q.queryClaims(ctx, `
		SELECT `+claimColumns+` FROM tlb_claims
		WHERE employee_id = ? ORDER BY created_at DESC`, string(emp))
}

// ApplyClaimTransition accepts only Pay.
func (q *queries) ApplyClaimTransition(ctx context.Context, id string, tr leave.Transition) error {
	t, ok := tr.(leave.PayTransition)
	if !ok {
		return fmt.Errorf("transition %q is not valid for claims", tr.Name())
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE tlb_claims
		SET status = 'paid', paid_by = ?, paid_at = ?, payment_ref = ?
		WHERE id = ?`,
		t.Payer, t.At.Format(timeFormat), nullString(t.Reference), id)
	if err != nil {
		return fmt.Errorf("failed to apply pay transition: %w", err)
	}
	return requireOneRow(res, "claim", id)
}

func (q *queries) queryClaims(ctx context.Context, query string, args ...any) ([]leave.TLBClaim, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.TLBClaim
	for rows.Next() {
		var c leave.TLBClaim
		var emp, claimDate, sepDate, credits, salary, factor, amount, status, createdAt string
		var paidBy, paidAt, paymentRef sql.NullString
		if err := rows.Scan(&c.ID, &emp, &claimDate, &sepDate, &credits, &salary,
			&factor, &amount, &status, &paidBy, &paidAt, &paymentRef, &createdAt); err != nil {
			return nil, err
		}
		c.EmployeeID = leave.EmployeeID(emp)
		c.ClaimDate, _ = leave.ParseDate(claimDate)
		c.SeparationDate, _ = leave.ParseDate(sepDate)
		c.TotalCredits = mustDecimal(credits)
		c.HighestSalary = mustDecimal(salary)
		c.ConstantFactor = mustDecimal(factor)
		c.Amount = mustDecimal(amount)
		c.Status = leave.ClaimStatus(status)
		c.PaidBy = paidBy.String
		c.PaymentRef = paymentRef.String
		if paidAt.Valid {
			if t, err := time.Parse(timeFormat, paidAt.String); err == nil {
				c.PaidAt = &t
			}
		}
		c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(timeFormat), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func requireOneRow(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &leave.NotFoundError{Kind: kind, Key: key}
	}
	return nil
}
