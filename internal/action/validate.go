// Package action validates strategy-emitted trade intents against the
// fixed action grammar spec.md §4.1 defines.
package action

import (
	"fmt"

	"github.com/atlas-desktop/backtester/pkg/types"
)

// ActionSchemaError reports the first offending action in a batch, by
// index, with a human-readable reason. Fatal for the current run.
type ActionSchemaError struct {
	Index  int
	Reason string
}

func (e *ActionSchemaError) Error() string {
	return fmt.Sprintf("action[%d]: %s", e.Index, e.Reason)
}

// Validate checks every action in order and returns the first
// ActionSchemaError encountered, or nil if all actions conform.
func Validate(actions []types.Action) error {
	for i, a := range actions {
		if err := validateOne(a); err != nil {
			return &ActionSchemaError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

func validateOne(a types.Action) error {
	switch a.Type {
	case types.ActionOpen, types.ActionPendingOpen:
		if a.Lot <= 0 {
			return fmt.Errorf("%s requires positive lot, got %v", a.Type, a.Lot)
		}
		if a.Side != types.Buy && a.Side != types.Sell {
			return fmt.Errorf("%s requires side BUY or SELL", a.Type)
		}
		if a.Type == types.ActionPendingOpen && a.Price == nil {
			return fmt.Errorf("PENDING_OPEN requires numeric price")
		}
		return nil

	case types.ActionClose:
		return requireTicket(a)

	case types.ActionModify:
		if err := requireTicket(a); err != nil {
			return err
		}
		if a.SL == nil && a.TP == nil {
			return fmt.Errorf("MODIFY requires at least one of sl/tp")
		}
		return nil

	case types.ActionSetTrailing:
		if err := requireTicket(a); err != nil {
			return err
		}
		if a.StartRatio != nil && (*a.StartRatio < 0 || *a.StartRatio > 1) {
			return fmt.Errorf("SET_TRAILING.start_ratio must be in [0, 1], got %v", *a.StartRatio)
		}
		return nil

	case types.ActionCancelPending:
		return requireTicket(a)

	case types.ActionNop:
		return nil

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func requireTicket(a types.Action) error {
	if a.Ticket <= 0 {
		return fmt.Errorf("%s requires an integer ticket, got %v", a.Type, a.Ticket)
	}
	return nil
}
