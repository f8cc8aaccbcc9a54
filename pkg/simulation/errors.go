package simulation

import "fmt"

// EngineFailureError stops the whole batch: one trial's engine run failed,
// so the partial aggregates are discarded rather than reported as if the
// measurement were complete.
type EngineFailureError struct {
	Trial int
	Err   error
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("simulation: engine failure in trial %d: %v", e.Trial, e.Err)
}

func (e *EngineFailureError) Unwrap() error {
	return e.Err
}
