package simulator

import "fmt"

// SimulationError reports a failure during simulation: Run returns it
// when the strategy call fails or when the strategy's actions fail
// schema validation. Run does not check indicator series for NaN or
// bar series for gaps. Fatal for the run.
type SimulationError struct {
	Minute int
	Reason string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error at minute %d: %s", e.Minute, e.Reason)
}

func simErr(minute int, format string, args ...interface{}) error {
	return &SimulationError{Minute: minute, Reason: fmt.Sprintf(format, args...)}
}
