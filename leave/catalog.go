/*
catalog.go - Built-in leave types and tunable settings

PURPOSE:
  Ships the standard catalog (VL, SL, FL, ML, PL, SPL) and the Settings
  snapshot the batch processors run against. Settings live in the store
  as key/value pairs so an admin can retune rates without a deploy; the
  engine reads them once at startup and on explicit reload.

SEE ALSO:
  - accrual.go: Consumes the monthly rates
  - benefit.go: Consumes the constant factor
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPE CODES
// =============================================================================

const (
	CodeVacation         = "VL"
	CodeSick             = "SL"
	CodeForced           = "FL"
	CodeMaternity        = "ML"
	CodePaternity        = "PL"
	CodeSpecialPrivilege = "SPL"
)

// MaxLeaveTypeCodeLen bounds catalog codes.
const MaxLeaveTypeCodeLen = 10

func capOf(days string) *decimal.Decimal {
	d := decimal.RequireFromString(days)
	return &d
}

// BuiltinLeaveTypes returns the standard catalog seeded on first start.
// Only VL and SL are monetizable and only they accrue monthly; the rest
// are granted per event or per year.
func BuiltinLeaveTypes() []LeaveType {
	return []LeaveType{
		{ID: "lt-vl", Code: CodeVacation, Name: "Vacation Leave", MaxDaysPerYear: capOf("15"), IsMonetizable: true},
		{ID: "lt-sl", Code: CodeSick, Name: "Sick Leave", MaxDaysPerYear: capOf("15"), IsMonetizable: true, RequiresMedicalCert: true},
		{ID: "lt-fl", Code: CodeForced, Name: "Forced Leave", MaxDaysPerYear: capOf("5")},
		{ID: "lt-ml", Code: CodeMaternity, Name: "Maternity Leave", MaxDaysPerYear: capOf("105")},
		{ID: "lt-pl", Code: CodePaternity, Name: "Paternity Leave", MaxDaysPerYear: capOf("7")},
		{ID: "lt-spl", Code: CodeSpecialPrivilege, Name: "Special Privilege Leave", MaxDaysPerYear: capOf("3")},
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// Setting keys as stored.
const (
	SettingMonthlyVacationAccrual = "monthly_vl_accrual"
	SettingMonthlySickAccrual     = "monthly_sl_accrual"
	SettingMaxCarryForwardDays    = "max_carry_forward_days"
	SettingTLBConstantFactor      = "tlb_constant_factor"
)

// Settings is the snapshot the processors compute against.
type Settings struct {
	MonthlyVacationAccrual decimal.Decimal
	MonthlySickAccrual     decimal.Decimal
	MaxCarryForwardDays    decimal.Decimal
	TLBConstantFactor      decimal.Decimal
}

func DefaultSettings() Settings {
	return Settings{
		MonthlyVacationAccrual: decimal.RequireFromString("1.25"),
		MonthlySickAccrual:     decimal.RequireFromString("1.25"),
		MaxCarryForwardDays:    decimal.RequireFromString("5"),
		TLBConstantFactor:      decimal.RequireFromString("1.0"),
	}
}

// LoadSettings reads the stored settings, falling back to defaults for
// any missing key.
func LoadSettings(ctx context.Context, store SettingStore) (Settings, error) {
	s := DefaultSettings()
	for _, bind := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{SettingMonthlyVacationAccrual, &s.MonthlyVacationAccrual},
		{SettingMonthlySickAccrual, &s.MonthlySickAccrual},
		{SettingMaxCarryForwardDays, &s.MaxCarryForwardDays},
		{SettingTLBConstantFactor, &s.TLBConstantFactor},
	} {
		v, ok, err := store.GetSetting(ctx, bind.key)
		if err != nil {
			return Settings{}, err
		}
		if ok {
			*bind.dst = v
		}
	}
	return s, nil
}

// =============================================================================
// SEEDING
// =============================================================================

// SeedCatalog inserts the built-in leave types if the catalog is empty.
func SeedCatalog(ctx context.Context, store CatalogStore) error {
	existing, err := store.ListLeaveTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, lt := range BuiltinLeaveTypes() {
		lt.CreatedAt = now
		if err := store.SaveLeaveType(ctx, &lt); err != nil {
			return err
		}
	}
	return nil
}

// SeedSettings writes any missing setting keys from the given values.
func SeedSettings(ctx context.Context, store SettingStore, s Settings) error {
	for key, val := range map[string]decimal.Decimal{
		SettingMonthlyVacationAccrual: s.MonthlyVacationAccrual,
		SettingMonthlySickAccrual:     s.MonthlySickAccrual,
		SettingMaxCarryForwardDays:    s.MaxCarryForwardDays,
		SettingTLBConstantFactor:      s.TLBConstantFactor,
	} {
		_, ok, err := store.GetSetting(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			if err := store.PutSetting(ctx, key, val); err != nil {
				return err
			}
		}
	}
	return nil
}
