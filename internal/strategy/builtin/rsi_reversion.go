// Package builtin provides the reference strategy shipped with the
// engine: an RSI mean-reversion EA driven entirely by the flags
// internal/indicators already computes (overbought/oversold/reset),
// emitting the native action grammar. Grounded on the teacher's
// internal/strategy/strategy.go EA shape, generalized from its
// fixed BUY/SELL signal methods to the tagged Action grammar.
package builtin

import (
	"github.com/atlas-desktop/backtester/internal/strategy"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// RSIReversion opens long while the oversold flag is set and short
// while the overbought flag is set (when flat), closes on the reset
// band, and arms a trailing stop once configured.
type RSIReversion struct{}

// NewRSIReversion constructs the reference RSI mean-reversion strategy.
func NewRSIReversion() *RSIReversion {
	return &RSIReversion{}
}

// EmitActions implements strategy.Strategy.
func (s *RSIReversion) EmitActions(iMinute int, ctx strategy.ReadOnlyContext) ([]types.Action, error) {
	var actions []types.Action

	if ctx.InPosition {
		if ctx.Reset {
			actions = append(actions, types.Action{Type: types.ActionClose, Ticket: ctx.Position.Ticket})
			return actions, nil
		}
		if ctx.Config.TrailingEnable && !ctx.Position.TrailingOn {
			ratio := ctx.Config.TrailingStart
			actions = append(actions, types.Action{
				Type:       types.ActionSetTrailing,
				Ticket:     ctx.Position.Ticket,
				StartRatio: &ratio,
			})
		}
		return actions, nil
	}

	cfg := ctx.Config

	// SL/TP for a fresh position are always derived by the simulator
	// from cfg.StoplossPoints/RR; OPEN only carries side and lot.
	switch {
	case ctx.Oversold:
		actions = append(actions, types.Action{Type: types.ActionOpen, Side: types.Buy, Lot: cfg.MinLot})
	case ctx.Overbought:
		actions = append(actions, types.Action{Type: types.ActionOpen, Side: types.Sell, Lot: cfg.MinLot})
	}

	return actions, nil
}

var _ strategy.Strategy = (*RSIReversion)(nil)
