/*
Package config loads server configuration from the environment.

PURPOSE:
  Reads settings from a .env file (when present) and environment
  variables via viper. Accrual rates and benefit tunables configured
  here act as seed values; once the settings table is populated, the
  stored values win.

VARIABLES:
  PORT                    HTTP port (default 8080)
  DB_PATH                 SQLite database path (default leave.db)
  LOG_LEVEL               zerolog level (default info)
  SCHEDULER_ENABLED       run the batch scheduler (default true)
  MONTHLY_VL_ACCRUAL      vacation days credited per month (default 1.25)
  MONTHLY_SL_ACCRUAL      sick days credited per month (default 1.25)
  MAX_CARRY_FORWARD_DAYS  year-end rollover cap (default 5)
  TLB_CONSTANT_FACTOR     terminal benefit multiplier (default 1.0)
*/
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/warp/leave-ledger/leave"
)

type Config struct {
	Port             int
	DBPath           string
	LogLevel         string
	SchedulerEnabled bool

	MonthlyVLAccrual    decimal.Decimal
	MonthlySLAccrual    decimal.Decimal
	MaxCarryForwardDays decimal.Decimal
	TLBConstantFactor   decimal.Decimal
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	// Missing .env is fine; the environment alone is enough.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_PATH", "leave.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("MONTHLY_VL_ACCRUAL", "1.25")
	viper.SetDefault("MONTHLY_SL_ACCRUAL", "1.25")
	viper.SetDefault("MAX_CARRY_FORWARD_DAYS", "5")
	viper.SetDefault("TLB_CONSTANT_FACTOR", "1.0")

	cfg := &Config{
		Port:             viper.GetInt("PORT"),
		DBPath:           viper.GetString("DB_PATH"),
		LogLevel:         viper.GetString("LOG_LEVEL"),
		SchedulerEnabled: viper.GetBool("SCHEDULER_ENABLED"),
	}

	for _, bind := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"MONTHLY_VL_ACCRUAL", &cfg.MonthlyVLAccrual},
		{"MONTHLY_SL_ACCRUAL", &cfg.MonthlySLAccrual},
		{"MAX_CARRY_FORWARD_DAYS", &cfg.MaxCarryForwardDays},
		{"TLB_CONSTANT_FACTOR", &cfg.TLBConstantFactor},
	} {
		d, err := decimal.NewFromString(viper.GetString(bind.key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", bind.key, err)
		}
		*bind.dst = d
	}

	return cfg, nil
}

// Settings maps the configured tunables into the engine's snapshot.
func (c *Config) Settings() leave.Settings {
	return leave.Settings{
		MonthlyVacationAccrual: c.MonthlyVLAccrual,
		MonthlySickAccrual:     c.MonthlySLAccrual,
		MaxCarryForwardDays:    c.MaxCarryForwardDays,
		TLBConstantFactor:      c.TLBConstantFactor,
	}
}
