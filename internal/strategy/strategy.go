// Package strategy defines the strategy plugin contract and a
// registry that resolves either the native action-emitting API or a
// legacy side-only API, per spec.md §4.10.
package strategy

import (
	"fmt"
	"time"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// ReadOnlyContext is the per-minute, borrowed view handed to a
// strategy. The strategy must not retain it past the call.
type ReadOnlyContext struct {
	Minute int
	Time   time.Time

	Bid, Ask float64
	Point    float64

	RSIBase, RSIM15, RSIH1 []float64 // sliced [0..=Minute]

	Overbought, Oversold, Reset bool

	Position types.Position
	InPosition bool

	LossStreak int
	Balance    float64
	RiskPct    float64

	Config *config.Config
}

// Strategy is the native action-emitting plugin interface.
type Strategy interface {
	EmitActions(iMinute int, ctx ReadOnlyContext) ([]types.Action, error)
}

// LegacyStrategy is the side-only plugin interface the loader wraps
// into a Strategy that emits a single OPEN at cfg.MinLot.
type LegacyStrategy interface {
	EntrySignal(iMinute int, ctx ReadOnlyContext) (types.Side, bool)
}

// EAValidationError reports a strategy plugin that is absent or
// exposes neither supported API. Fatal at startup.
type EAValidationError struct {
	Name   string
	Reason string
}

func (e *EAValidationError) Error() string {
	return fmt.Sprintf("strategy %q: %s", e.Name, e.Reason)
}

// legacyAdapter wraps a LegacyStrategy as a Strategy.
type legacyAdapter struct {
	inner LegacyStrategy
}

func (a *legacyAdapter) EmitActions(iMinute int, ctx ReadOnlyContext) ([]types.Action, error) {
	side, ok := a.inner.EntrySignal(iMinute, ctx)
	if !ok {
		return nil, nil
	}
	return []types.Action{{
		Type: types.ActionOpen,
		Side: side,
		Lot:  ctx.Config.MinLot,
	}}, nil
}

// Registry resolves a named strategy to a Strategy, wrapping legacy
// implementations transparently.
type Registry struct {
	native map[string]Strategy
	legacy map[string]LegacyStrategy
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		native: make(map[string]Strategy),
		legacy: make(map[string]LegacyStrategy),
	}
}

// RegisterNative registers a strategy under the native emit_actions API.
func (r *Registry) RegisterNative(name string, s Strategy) {
	r.native[name] = s
}

// RegisterLegacy registers a strategy under the legacy entry_signal API.
func (r *Registry) RegisterLegacy(name string, s LegacyStrategy) {
	r.legacy[name] = s
}

// Resolve looks up a named strategy, preferring a native registration,
// and wraps a legacy one if that's all that's registered.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if s, ok := r.native[name]; ok {
		return s, nil
	}
	if s, ok := r.legacy[name]; ok {
		return &legacyAdapter{inner: s}, nil
	}
	return nil, &EAValidationError{Name: name, Reason: "no native emit_actions or legacy entry_signal implementation registered"}
}
