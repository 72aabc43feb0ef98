// Package simulator drives the single-run minute loop: build read-only
// context, invoke strategy, apply actions, resolve the bar, update run
// state. The per-bar step order is fixed by spec.md §5 and this
// package never reorders it.
package simulator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/action"
	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/diagnostics"
	"github.com/atlas-desktop/backtester/internal/execmath"
	"github.com/atlas-desktop/backtester/internal/indicators"
	"github.com/atlas-desktop/backtester/internal/resolver"
	"github.com/atlas-desktop/backtester/internal/runstate"
	"github.com/atlas-desktop/backtester/internal/strategy"
	"github.com/atlas-desktop/backtester/internal/tick"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// Result is the outcome of one single-run simulation.
type Result struct {
	RunID        string
	Trades       []types.TradeRecord
	FinalBalance float64
	EquityCurve  []types.EquityPoint
}

// Run executes the fixed per-bar sequence over the full bar series.
// Cancellation is only honoured between bars (spec.md §5). trail may
// be nil; when supplied (the CLI's --log-level debug path), every step
// of the fixed per-bar sequence is recorded in call order.
func Run(ctx context.Context, cfg *config.Config, bars []types.Bar, ind *indicators.IndicatorSet, strat strategy.Strategy, logger *zap.Logger, trail *diagnostics.Trail) (*Result, error) {
	rs := runstate.New(cfg)
	vpp := execmath.ValuePerPoint(cfg)
	runID := uuid.New().String()

	res := &Result{RunID: runID}

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		bidPath := tick.Expand(bar, cfg.OHLCOrder)
		askPath := tick.AskPath(bidPath, cfg.FixedSpreadPoint, cfg.Point)

		if trail != nil {
			trail.Record(i, bar.Timestamp, diagnostics.EventFlags, "")
		}

		roCtx := buildContext(i, bar, cfg, ind, rs, bidPath)
		if trail != nil {
			trail.Record(i, bar.Timestamp, diagnostics.EventContext, "")
		}

		actions, err := strat.EmitActions(i, roCtx)
		if err != nil {
			return nil, simErr(i, "strategy call failed: %v", err)
		}
		if trail != nil {
			trail.Record(i, bar.Timestamp, diagnostics.EventStrategy, "")
		}

		if err := action.Validate(actions); err != nil {
			return nil, simErr(i, "invalid action: %v", err)
		}
		if trail != nil {
			trail.Record(i, bar.Timestamp, diagnostics.EventValidate, "")
		}

		for _, a := range actions {
			applyAction(cfg, rs, a, bidPath, bar.Timestamp, vpp, logger, i, &res.Trades)
		}
		checkPendingTriggers(cfg, rs, bidPath, logger, i)
		if trail != nil {
			trail.Record(i, bar.Timestamp, diagnostics.EventApply, "")
		}

		if !rs.IsFlat() {
			applyTrailing(cfg, rs, bidPath)
			if trail != nil {
				trail.Record(i, bar.Timestamp, diagnostics.EventTrailing, "")
			}

			barPath := bidPath
			if rs.Position.Side == types.Sell {
				barPath = askPath
			}

			outcome := resolver.Resolve(rs.Position.Side, barPath, rs.Position.SL, rs.Position.TP)
			if trail != nil {
				trail.Record(i, bar.Timestamp, diagnostics.EventResolve, outcome.String())
			}
			if outcome != types.OutcomeNone {
				closeOnOutcome(cfg, rs, outcome, bar.Timestamp, vpp, &res.Trades)
				if trail != nil {
					trail.Record(i, bar.Timestamp, diagnostics.EventStateUpdate, "")
					trail.Record(i, bar.Timestamp, diagnostics.EventTradeAppend, "")
				}
			}
		}

		res.EquityCurve = append(res.EquityCurve, types.EquityPoint{
			Timestamp:  bar.Timestamp,
			Balance:    rs.BalanceFloat64(),
			RiskPct:    rs.RiskPct,
			LossStreak: rs.LossStreak,
		})
	}

	if !rs.IsFlat() {
		last := bars[len(bars)-1]
		bidPath := tick.Expand(last, cfg.OHLCOrder)
		exit := bidPath[3]
		if rs.Position.Side == types.Sell {
			exit = execmath.ApplySpreadPolicy(cfg, exit, types.Sell)
		}
		closeManual(cfg, rs, types.TradeTimeout, last.Timestamp, exit, vpp, &res.Trades)
	}

	res.FinalBalance = rs.BalanceFloat64()
	return res, nil
}

func buildContext(i int, bar types.Bar, cfg *config.Config, ind *indicators.IndicatorSet, rs *runstate.RunState, bidPath types.TickPath) strategy.ReadOnlyContext {
	bid := bidPath[0]
	ask := execmath.ApplySpreadPolicy(cfg, bid, types.Buy)

	roCtx := strategy.ReadOnlyContext{
		Minute:     i,
		Time:       bar.Timestamp,
		Bid:        bid,
		Ask:        ask,
		Point:      cfg.Point,
		RSIBase:    ind.RSIBase[:i+1],
		RSIM15:     ind.RSIM15[:i+1],
		RSIH1:      ind.RSIH1[:i+1],
		Overbought: ind.Overbought[i],
		Oversold:   ind.Oversold[i],
		Reset:      ind.Reset[i],
		LossStreak: rs.LossStreak,
		Balance:    rs.BalanceFloat64(),
		RiskPct:    rs.RiskPct,
		Config:     cfg,
	}
	if !rs.IsFlat() {
		roCtx.Position = *rs.Position
		roCtx.InPosition = true
	}

	if roCtx.Reset {
		rs.ApplyReset()
	}

	return roCtx
}

func applyAction(cfg *config.Config, rs *runstate.RunState, a types.Action, bidPath types.TickPath, ts time.Time, vpp float64, logger *zap.Logger, minute int, trades *[]types.TradeRecord) {
	switch a.Type {
	case types.ActionNop:
		return

	case types.ActionOpen:
		if !rs.IsFlat() {
			logger.Warn("OPEN ignored: already in position", zap.Int("minute", minute))
			return
		}
		if rs.SideLocked(a.Side) {
			logger.Warn("OPEN ignored: side locked", zap.Int("minute", minute), zap.String("side", a.Side.String()))
			return
		}
		openPosition(cfg, rs, a.Side, a.Lot, bidPath)

	case types.ActionClose:
		if rs.IsFlat() {
			logger.Warn("CLOSE ignored: no open position", zap.Int("minute", minute))
			return
		}
		if rs.Position.Ticket != a.Ticket {
			logger.Warn("CLOSE ignored: ticket mismatch", zap.Int("minute", minute))
			return
		}
		// Manual close at current bid/ask quote.
		exit := bidPath[0]
		if rs.Position.Side == types.Sell {
			exit = execmath.ApplySpreadPolicy(cfg, exit, types.Sell)
		}
		closeManual(cfg, rs, types.TradeManual, ts, exit, vpp, trades)

	case types.ActionModify:
		if rs.IsFlat() || rs.Position.Ticket != a.Ticket {
			logger.Warn("MODIFY ignored: no matching position", zap.Int("minute", minute))
			return
		}
		if a.SL != nil {
			rs.Position.SL = *a.SL
		}
		if a.TP != nil {
			rs.Position.TP = *a.TP
		}

	case types.ActionSetTrailing:
		if rs.IsFlat() || rs.Position.Ticket != a.Ticket {
			logger.Warn("SET_TRAILING ignored: no matching position", zap.Int("minute", minute))
			return
		}
		rs.Position.TrailingOn = true
		if a.StartRatio != nil {
			rs.Position.TrailStart = *a.StartRatio
		} else {
			rs.Position.TrailStart = cfg.TrailingStart
		}

	case types.ActionPendingOpen:
		t := rs.AllocateTicket()
		rs.Pending[t] = &types.PendingOrder{Ticket: t, Side: a.Side, Lot: a.Lot, Price: *a.Price}

	case types.ActionCancelPending:
		delete(rs.Pending, a.Ticket)
	}
}

// checkPendingTriggers converts a pending order to a market OPEN once
// the bar's synthetic tick path crosses its trigger price. Minimum
// viable behaviour per spec.md §9: never expires automatically.
func checkPendingTriggers(cfg *config.Config, rs *runstate.RunState, bidPath types.TickPath, logger *zap.Logger, minute int) {
	if !rs.IsFlat() || len(rs.Pending) == 0 {
		return
	}
	lo, hi := bidPath[0], bidPath[0]
	for _, p := range bidPath {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	for ticket, p := range rs.Pending {
		if p.Price < lo || p.Price > hi {
			continue
		}
		if rs.SideLocked(p.Side) {
			continue
		}
		delete(rs.Pending, ticket)
		openPosition(cfg, rs, p.Side, p.Lot, bidPath)
		logger.Debug("pending order triggered", zap.Int("minute", minute), zap.Int("ticket", ticket))
		return
	}
}

func openPosition(cfg *config.Config, rs *runstate.RunState, side types.Side, lot float64, bidPath types.TickPath) {
	entry := execmath.EntryQuote(cfg, bidPath[0], side)

	slDist := cfg.StoplossPoints * cfg.Point
	tpDist := cfg.RR * cfg.StoplossPoints * cfg.Point

	var sl, tp float64
	if side == types.Buy {
		sl = entry - slDist
		tp = entry + tpDist
	} else {
		sl = entry + slDist
		tp = entry - tpDist
	}
	sl, tp = execmath.AdjustBarriers(cfg, side, sl, tp)

	rs.Position = &types.Position{
		Ticket:    rs.AllocateTicket(),
		Side:      side,
		OpenPrice: entry,
		Lot:       execmath.NormalizeLot(cfg, lot),
		SL:        sl,
		TP:        tp,
	}
	rs.LockSide(side)
}

// applyTrailing advances SL to follow the best favourable price once
// the unrealized move reaches trailing_start_ratio * sl_points * point,
// evaluated against the bar's synthetic tick path in order, before the
// resolver runs on the remainder of the bar.
func applyTrailing(cfg *config.Config, rs *runstate.RunState, bidPath types.TickPath) {
	if !cfg.TrailingEnable || !rs.Position.TrailingOn {
		return
	}
	p := rs.Position
	startRatio := p.TrailStart
	if startRatio == 0 {
		startRatio = cfg.TrailingStart
	}
	trigger := startRatio * cfg.StoplossPoints * cfg.Point
	width := cfg.TrailingWidth * cfg.Point

	for _, px := range bidPath {
		if p.Side == types.Buy {
			if px > p.TrailingBest {
				p.TrailingBest = px
			}
			if p.TrailingBest-p.OpenPrice >= trigger {
				newSL := p.TrailingBest - width
				if newSL > p.SL {
					p.SL = newSL
				}
			}
		} else {
			if p.TrailingBest == 0 || px < p.TrailingBest {
				p.TrailingBest = px
			}
			if p.OpenPrice-p.TrailingBest >= trigger {
				newSL := p.TrailingBest + width
				if newSL < p.SL || p.SL == 0 {
					p.SL = newSL
				}
			}
		}
	}
}

func closeOnOutcome(cfg *config.Config, rs *runstate.RunState, outcome types.Outcome, ts time.Time, vpp float64, trades *[]types.TradeRecord) {
	exit := rs.Position.TP
	tradeOutcome := types.TradeTP
	if outcome == types.OutcomeSL {
		exit = rs.Position.SL
		tradeOutcome = types.TradeSL
	}
	finalize(cfg, rs, tradeOutcome, ts, exit, vpp, trades)
}

func closeManual(cfg *config.Config, rs *runstate.RunState, outcome types.TradeOutcome, ts time.Time, exit float64, vpp float64, trades *[]types.TradeRecord) {
	finalize(cfg, rs, outcome, ts, exit, vpp, trades)
}

func finalize(cfg *config.Config, rs *runstate.RunState, outcome types.TradeOutcome, ts time.Time, exit float64, vpp float64, trades *[]types.TradeRecord) {
	p := rs.Position
	sideMul := 1.0
	if p.Side == types.Sell {
		sideMul = -1.0
	}

	pnlPoints := (exit - p.OpenPrice) / cfg.Point * sideMul
	commission := execmath.CommissionForTrade(cfg, p.Lot)
	pnlCurrency := pnlPoints*vpp*p.Lot - commission

	rec := types.TradeRecord{
		Timestamp:   ts,
		Outcome:     outcome,
		Side:        p.Side,
		EntryPrice:  p.OpenPrice,
		ExitPrice:   exit,
		Lot:         p.Lot,
		PnLPoints:   pnlPoints,
		PnLCurrency: pnlCurrency,
		Commission:  commission,
	}
	*trades = append(*trades, rec)

	rs.OnTradeClosed(cfg, pnlCurrency)
	rs.Position = nil
}
