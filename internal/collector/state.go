package collector

import "time"

// State is a step of a collection run.
type State string

const (
	StateInit          State = "INIT"
	StateValidating    State = "VALIDATING_SESSION"
	StateIterating     State = "ITERATING"
	StateCheckpointing State = "CHECKPOINTING"
	StateFinalizing    State = "FINALIZING"
	StateDone          State = "DONE"
	StateFatal         State = "FATAL"
	StateInterrupted   State = "INTERRUPTED"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateFatal, StateInterrupted:
		return true
	default:
		return false
	}
}

// Summary reports what a run did.
type Summary struct {
	RunID       string        `json:"runId"`
	State       State         `json:"state"`
	Targets     int           `json:"targets"`
	Attempted   int           `json:"attempted"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Stored      int           `json:"stored"`
	Checkpoints int           `json:"checkpoints"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"durationMs"`
}

func (s *Summary) setDuration(d time.Duration) {
	s.Duration = d
	s.DurationMS = d.Milliseconds()
}
