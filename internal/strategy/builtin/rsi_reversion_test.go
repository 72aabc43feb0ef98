package builtin

import (
	"testing"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/strategy"
	"github.com/atlas-desktop/backtester/pkg/types"
)

func baseCtx() strategy.ReadOnlyContext {
	return strategy.ReadOnlyContext{
		Config: &config.Config{MinLot: 0.1, StoplossPoints: 10, RR: 2, TrailingEnable: true, TrailingStart: 0.5},
	}
}

func TestRSIReversion_OpensLongOnOversold(t *testing.T) {
	s := NewRSIReversion()
	ctx := baseCtx()
	ctx.Oversold = true

	actions, err := s.EmitActions(0, ctx)
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].Type != types.ActionOpen || actions[0].Side != types.Buy {
		t.Errorf("actions = %+v, want a single OPEN BUY", actions)
	}
}

func TestRSIReversion_OpensShortOnOverbought(t *testing.T) {
	s := NewRSIReversion()
	ctx := baseCtx()
	ctx.Overbought = true

	actions, err := s.EmitActions(0, ctx)
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].Type != types.ActionOpen || actions[0].Side != types.Sell {
		t.Errorf("actions = %+v, want a single OPEN SELL", actions)
	}
}

func TestRSIReversion_NoSignalEmitsNothing(t *testing.T) {
	s := NewRSIReversion()
	actions, err := s.EmitActions(0, baseCtx())
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %+v, want none when neither flag is set", actions)
	}
}

func TestRSIReversion_ClosesOnReset(t *testing.T) {
	s := NewRSIReversion()
	ctx := baseCtx()
	ctx.InPosition = true
	ctx.Reset = true
	ctx.Position = types.Position{Ticket: 7}

	actions, err := s.EmitActions(0, ctx)
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].Type != types.ActionClose || actions[0].Ticket != 7 {
		t.Errorf("actions = %+v, want a single CLOSE on ticket 7", actions)
	}
}

func TestRSIReversion_ArmsTrailingOnceWhileInPosition(t *testing.T) {
	s := NewRSIReversion()
	ctx := baseCtx()
	ctx.InPosition = true
	ctx.Position = types.Position{Ticket: 3, TrailingOn: false}

	actions, err := s.EmitActions(0, ctx)
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].Type != types.ActionSetTrailing || actions[0].Ticket != 3 {
		t.Errorf("actions = %+v, want a single SET_TRAILING on ticket 3", actions)
	}

	ctx.Position.TrailingOn = true
	actions, err = s.EmitActions(0, ctx)
	if err != nil {
		t.Fatalf("EmitActions returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %+v, want none once trailing is already armed", actions)
	}
}
