package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// knownKeys mirrors every yaml tag on Config. viper's own Unmarshal
// doesn't reject unknown top-level keys, so strict-mode checking is
// done by hand against a yaml.v3 node walk of the same file, which
// preserves the full original key set.
var knownKeys = map[string]bool{
	"symbol": true, "timezone": true, "dst": true, "point": true,
	"tick_size": true, "tick_value": true,
	"min_lot": true, "lot_step": true, "max_lot": true, "ft6_mode": true,
	"spread_policy": true, "fixed_spread_point": true,
	"commission_per_lot_round": true, "swap_long_per_lot_day": true,
	"swap_short_per_lot_day": true,
	"money_mode": true, "risk_ratio": true, "initial_risk_pct": true,
	"step_percent": true, "base_balance": true, "fixed_lot": true,
	"stoploss_points": true, "rr": true, "trailing_enable": true,
	"trailing_start_ratio": true, "trailing_width_points": true,
	"rsi_period": true, "overbought": true, "oversold": true,
	"reset_level": true, "loss_streak_max": true, "ohlc_order": true,
	"batch_size": true, "chunk_years": true,
}

// Load reads a YAML config file, rejects unknown keys in strict mode,
// and returns a validated Config. Field-by-field extraction through
// viper's typed getters (rather than a single mapstructure Unmarshal)
// keeps the three enum fields' coercion errors descriptive.
func Load(path string, logger *zap.Logger) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "<file>", Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
	}

	if err := checkUnknownKeys(raw); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, &ConfigError{Field: "<file>", Reason: fmt.Sprintf("parse error: %v", err)}
	}

	cfg := &Config{
		Symbol:           v.GetString("symbol"),
		Timezone:         v.GetString("timezone"),
		DST:              v.GetBool("dst"),
		Point:            v.GetFloat64("point"),
		TickSize:         v.GetFloat64("tick_size"),
		TickValue:        v.GetFloat64("tick_value"),
		MinLot:           v.GetFloat64("min_lot"),
		LotStep:          v.GetFloat64("lot_step"),
		MaxLot:           v.GetFloat64("max_lot"),
		FT6Mode:          v.GetBool("ft6_mode"),
		FixedSpreadPoint: v.GetFloat64("fixed_spread_point"),
		CommissionPerLot: v.GetFloat64("commission_per_lot_round"),
		SwapLongPerLot:   v.GetFloat64("swap_long_per_lot_day"),
		SwapShortPerLot:  v.GetFloat64("swap_short_per_lot_day"),
		RiskRatio:        v.GetFloat64("risk_ratio"),
		InitialRiskPct:   v.GetFloat64("initial_risk_pct"),
		StepPercent:      v.GetFloat64("step_percent"),
		BaseBalance:      v.GetFloat64("base_balance"),
		FixedLot:         v.GetFloat64("fixed_lot"),
		StoplossPoints:   v.GetFloat64("stoploss_points"),
		RR:               v.GetFloat64("rr"),
		TrailingEnable:   v.GetBool("trailing_enable"),
		TrailingStart:    v.GetFloat64("trailing_start_ratio"),
		TrailingWidth:    v.GetFloat64("trailing_width_points"),
		RSIPeriod:        v.GetInt("rsi_period"),
		Overbought:       v.GetFloat64("overbought"),
		Oversold:         v.GetFloat64("oversold"),
		ResetLevel:       v.GetFloat64("reset_level"),
		LossStreakMax:    v.GetInt("loss_streak_max"),
		BatchSize:        v.GetInt("batch_size"),
		ChunkYears:       v.GetInt("chunk_years"),
	}

	sp, err := parseSpreadPolicy(v.GetString("spread_policy"))
	if err != nil {
		return nil, &ConfigError{Field: "spread_policy", Reason: err.Error()}
	}
	mm, err := parseMoneyMode(v.GetString("money_mode"))
	if err != nil {
		return nil, &ConfigError{Field: "money_mode", Reason: err.Error()}
	}
	oo, err := parseOHLCOrder(v.GetString("ohlc_order"))
	if err != nil {
		return nil, &ConfigError{Field: "ohlc_order", Reason: err.Error()}
	}
	cfg.SpreadPolicy = sp
	cfg.MoneyMode = mm
	cfg.OHLCOrder = oo

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("config loaded", zap.String("path", path), zap.String("symbol", cfg.Symbol))
	return cfg, nil
}

func checkUnknownKeys(raw []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return &ConfigError{Field: "<file>", Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if len(node.Content) == 0 {
		return &ConfigError{Field: "<file>", Reason: "empty config document"}
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ConfigError{Field: "<file>", Reason: "top-level document must be a mapping"}
	}
	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if !knownKeys[key] {
			return &ConfigError{Field: key, Reason: "unknown configuration key (strict mode)"}
		}
	}
	return nil
}
