// Package config loads and validates the immutable run configuration.
package config

import (
	"fmt"
)

// SpreadPolicy controls how the fixed spread is applied to quotes and barriers.
type SpreadPolicy int

const (
	SpreadNone SpreadPolicy = iota
	SpreadSLOnly
	SpreadFull
)

func (p SpreadPolicy) String() string {
	switch p {
	case SpreadNone:
		return "NONE"
	case SpreadSLOnly:
		return "SL_ONLY"
	case SpreadFull:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

func parseSpreadPolicy(s string) (SpreadPolicy, error) {
	switch s {
	case "NONE":
		return SpreadNone, nil
	case "SL_ONLY":
		return SpreadSLOnly, nil
	case "FULL":
		return SpreadFull, nil
	default:
		return 0, fmt.Errorf("invalid spread_policy %q (want NONE, SL_ONLY, FULL)", s)
	}
}

// UnmarshalYAML lets viper/yaml decode the enum name directly.
func (p *SpreadPolicy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := parseSpreadPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MoneyMode selects the lot-sizing policy.
type MoneyMode int

const (
	MoneyFixed MoneyMode = iota
	MoneyGeometric
	MoneyArithmetic
)

func (m MoneyMode) String() string {
	switch m {
	case MoneyFixed:
		return "FIXED"
	case MoneyGeometric:
		return "GEOMETRIC"
	case MoneyArithmetic:
		return "ARITHMETIC"
	default:
		return "UNKNOWN"
	}
}

func parseMoneyMode(s string) (MoneyMode, error) {
	switch s {
	case "FIXED":
		return MoneyFixed, nil
	case "GEOMETRIC":
		return MoneyGeometric, nil
	case "ARITHMETIC":
		return MoneyArithmetic, nil
	default:
		return 0, fmt.Errorf("invalid money_mode %q (want FIXED, GEOMETRIC, ARITHMETIC)", s)
	}
}

func (m *MoneyMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := parseMoneyMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// OHLCOrder selects the synthetic-tick-path ordering within a bar.
type OHLCOrder int

const (
	OrderOHLC OHLCOrder = iota // O_H_L_C
	OrderOLHC                  // O_L_H_C
)

func (o OHLCOrder) String() string {
	switch o {
	case OrderOHLC:
		return "O_H_L_C"
	case OrderOLHC:
		return "O_L_H_C"
	default:
		return "UNKNOWN"
	}
}

func parseOHLCOrder(s string) (OHLCOrder, error) {
	switch s {
	case "O_H_L_C":
		return OrderOHLC, nil
	case "O_L_H_C":
		return OrderOLHC, nil
	default:
		return 0, fmt.Errorf("invalid ohlc_order %q (want O_H_L_C, O_L_H_C)", s)
	}
}

func (o *OHLCOrder) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := parseOHLCOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Config mirrors spec.md §3 exactly: every field is one config key.
type Config struct {
	// Instrument
	Symbol    string  `mapstructure:"symbol" yaml:"symbol"`
	Timezone  string  `mapstructure:"timezone" yaml:"timezone"`
	DST       bool    `mapstructure:"dst" yaml:"dst"`
	Point     float64 `mapstructure:"point" yaml:"point"`
	TickSize  float64 `mapstructure:"tick_size" yaml:"tick_size"`
	TickValue float64 `mapstructure:"tick_value" yaml:"tick_value"`

	// Lot constraints
	MinLot  float64 `mapstructure:"min_lot" yaml:"min_lot"`
	LotStep float64 `mapstructure:"lot_step" yaml:"lot_step"`
	MaxLot  float64 `mapstructure:"max_lot" yaml:"max_lot"`
	FT6Mode bool    `mapstructure:"ft6_mode" yaml:"ft6_mode"`

	// Costs
	SpreadPolicy      SpreadPolicy `mapstructure:"spread_policy" yaml:"spread_policy"`
	FixedSpreadPoint  float64      `mapstructure:"fixed_spread_point" yaml:"fixed_spread_point"`
	CommissionPerLot  float64      `mapstructure:"commission_per_lot_round" yaml:"commission_per_lot_round"`
	SwapLongPerLot    float64      `mapstructure:"swap_long_per_lot_day" yaml:"swap_long_per_lot_day"`
	SwapShortPerLot   float64      `mapstructure:"swap_short_per_lot_day" yaml:"swap_short_per_lot_day"`

	// Risk / money mode
	MoneyMode       MoneyMode `mapstructure:"money_mode" yaml:"money_mode"`
	RiskRatio       float64   `mapstructure:"risk_ratio" yaml:"risk_ratio"`
	InitialRiskPct  float64   `mapstructure:"initial_risk_pct" yaml:"initial_risk_pct"`
	StepPercent     float64   `mapstructure:"step_percent" yaml:"step_percent"`
	BaseBalance     float64   `mapstructure:"base_balance" yaml:"base_balance"`
	FixedLot        float64   `mapstructure:"fixed_lot" yaml:"fixed_lot"`

	// Strategy knobs
	StoplossPoints  float64 `mapstructure:"stoploss_points" yaml:"stoploss_points"`
	RR              float64 `mapstructure:"rr" yaml:"rr"`
	TrailingEnable  bool    `mapstructure:"trailing_enable" yaml:"trailing_enable"`
	TrailingStart   float64 `mapstructure:"trailing_start_ratio" yaml:"trailing_start_ratio"`
	TrailingWidth   float64 `mapstructure:"trailing_width_points" yaml:"trailing_width_points"`
	RSIPeriod       int     `mapstructure:"rsi_period" yaml:"rsi_period"`
	Overbought      float64 `mapstructure:"overbought" yaml:"overbought"`
	Oversold        float64 `mapstructure:"oversold" yaml:"oversold"`
	ResetLevel      float64 `mapstructure:"reset_level" yaml:"reset_level"`
	LossStreakMax   int     `mapstructure:"loss_streak_max" yaml:"loss_streak_max"`

	// OHLC path order
	OHLCOrder OHLCOrder `mapstructure:"ohlc_order" yaml:"ohlc_order"`

	// Batching / debug
	BatchSize  int `mapstructure:"batch_size" yaml:"batch_size"`
	ChunkYears int `mapstructure:"chunk_years" yaml:"chunk_years"`
}

// Validate enforces every invariant spec.md §3 lists. It returns a
// *ConfigError naming the first offending field.
func (c *Config) Validate() error {
	positive := map[string]float64{
		"point":                    c.Point,
		"tick_size":                c.TickSize,
		"tick_value":               c.TickValue,
		"min_lot":                  c.MinLot,
		"lot_step":                 c.LotStep,
		"max_lot":                  c.MaxLot,
		"stoploss_points":          c.StoplossPoints,
		"rr":                       c.RR,
		"rsi_period":               float64(c.RSIPeriod),
	}
	for field, v := range positive {
		if v <= 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("must be strictly positive, got %v", v)}
		}
	}

	nonNegative := map[string]float64{
		"fixed_spread_point":      c.FixedSpreadPoint,
		"commission_per_lot_round": c.CommissionPerLot,
		"swap_long_per_lot_day":   c.SwapLongPerLot,
		"swap_short_per_lot_day":  c.SwapShortPerLot,
		"trailing_start_ratio":    c.TrailingStart,
		"trailing_width_points":   c.TrailingWidth,
		"risk_ratio":              c.RiskRatio,
		"initial_risk_pct":        c.InitialRiskPct,
		"step_percent":            c.StepPercent,
		"base_balance":            c.BaseBalance,
		"fixed_lot":               c.FixedLot,
	}
	for field, v := range nonNegative {
		if v < 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("must be non-negative, got %v", v)}
		}
	}

	if c.ResetLevel < 0 || c.ResetLevel > 100 {
		return &ConfigError{Field: "reset_level", Reason: fmt.Sprintf("must be within [0, 100], got %v", c.ResetLevel)}
	}
	if !(c.Oversold >= 0 && c.Oversold < c.Overbought && c.Overbought <= 100) {
		return &ConfigError{Field: "oversold/overbought", Reason: fmt.Sprintf("require 0 <= oversold < overbought <= 100, got oversold=%v overbought=%v", c.Oversold, c.Overbought)}
	}
	if c.MaxLot < c.MinLot {
		return &ConfigError{Field: "max_lot", Reason: fmt.Sprintf("max_lot (%v) must be >= min_lot (%v)", c.MaxLot, c.MinLot)}
	}

	return nil
}

// EffectiveLotConstraints returns (min, step) honouring ft6_mode.
func (c *Config) EffectiveLotConstraints() (min, step float64) {
	if c.FT6Mode {
		return 0.01, 0.01
	}
	return c.MinLot, c.LotStep
}
