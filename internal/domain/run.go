package domain

import "time"

// RunStatus is the outcome of one pipeline invocation.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run records one invocation of a stage for the run ledger.
type Run struct {
	ID            string
	Region        Region
	Action        Action
	Seed          uint64
	Deterministic bool
	Status        RunStatus
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration is the wall-clock time the stage took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFilter narrows a ledger listing. Zero values match everything.
type RunFilter struct {
	Region Region
	Limit  int
}
