package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func validYAML() string {
	return `
symbol: EURUSD
timezone: UTC
dst: false
point: 0.0001
tick_size: 0.00001
tick_value: 1.0
min_lot: 0.01
lot_step: 0.01
max_lot: 10
ft6_mode: false
spread_policy: FULL
fixed_spread_point: 2
commission_per_lot_round: 5
swap_long_per_lot_day: 0
swap_short_per_lot_day: 0
money_mode: GEOMETRIC
risk_ratio: 0.01
initial_risk_pct: 0.01
step_percent: 0.5
base_balance: 10000
fixed_lot: 0.1
stoploss_points: 10
rr: 2
trailing_enable: false
trailing_start_ratio: 0.5
trailing_width_points: 5
rsi_period: 14
overbought: 70
oversold: 30
reset_level: 50
loss_streak_max: 5
ohlc_order: O_H_L_C
batch_size: 10
chunk_years: 1
`
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeTemp(t, validYAML())
	logger := zap.NewNop()

	cfg, err := Load(path, logger)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Symbol != "EURUSD" {
		t.Errorf("Symbol = %q, want EURUSD", cfg.Symbol)
	}
	if cfg.SpreadPolicy != SpreadFull {
		t.Errorf("SpreadPolicy = %v, want FULL", cfg.SpreadPolicy)
	}
	if cfg.MoneyMode != MoneyGeometric {
		t.Errorf("MoneyMode = %v, want GEOMETRIC", cfg.MoneyMode)
	}
	if cfg.OHLCOrder != OrderOHLC {
		t.Errorf("OHLCOrder = %v, want O_H_L_C", cfg.OHLCOrder)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeTemp(t, validYAML()+"\nbogus_key: 1\n")
	_, err := Load(path, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for an unknown config key")
	}
	cerr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("error is %T, want *ConfigError", err)
	}
	if cerr.Field != "bogus_key" {
		t.Errorf("ConfigError.Field = %q, want bogus_key", cerr.Field)
	}
}

func TestLoad_InvalidEnum(t *testing.T) {
	bad := replaceOnce(validYAML(), "spread_policy: FULL", "spread_policy: BOGUS")
	path := writeTemp(t, bad)

	_, err := Load(path, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for an invalid spread_policy value")
	}
}

func TestValidate_OversoldOverboughtOrdering(t *testing.T) {
	bad := replaceOnce(validYAML(), "overbought: 70", "overbought: 20")
	path := writeTemp(t, bad)

	_, err := Load(path, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error when oversold >= overbought")
	}
}

func TestValidate_MaxLotBelowMinLot(t *testing.T) {
	bad := replaceOnce(validYAML(), "max_lot: 10", "max_lot: 0.001")
	path := writeTemp(t, bad)

	_, err := Load(path, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error when max_lot < min_lot")
	}
}

func TestEffectiveLotConstraints_FT6Mode(t *testing.T) {
	cfg := &Config{MinLot: 0.5, LotStep: 0.5, FT6Mode: true}
	min, step := cfg.EffectiveLotConstraints()
	if min != 0.01 || step != 0.01 {
		t.Errorf("FT6Mode constraints = (%v, %v), want (0.01, 0.01)", min, step)
	}

	cfg.FT6Mode = false
	min, step = cfg.EffectiveLotConstraints()
	if min != 0.5 || step != 0.5 {
		t.Errorf("non-FT6 constraints = (%v, %v), want (0.5, 0.5)", min, step)
	}
}

func replaceOnce(s, old, new string) string {
	for i := 0; i+len(old) <= len(s); i++ {
		if s[i:i+len(old)] == old {
			return s[:i] + new + s[i+len(old):]
		}
	}
	return s
}
