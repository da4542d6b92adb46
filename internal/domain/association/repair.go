package association

// RepairOutcome classifies what happened to one violation during repair
type RepairOutcome string

const (
	RepairOutcomeRepaired RepairOutcome = "repaired"
	RepairOutcomeSkipped  RepairOutcome = "skipped"
	RepairOutcomeFailed   RepairOutcome = "failed"
)

// RepairFailure pairs a violation with the error its fix returned
type RepairFailure struct {
	Violation Violation `json:"violation" yaml:"violation"`
	Error     string    `json:"error" yaml:"error"`
}

// RepairResult is the outcome of a repair batch
type RepairResult struct {
	Repaired []Violation     `json:"repaired" yaml:"repaired"`
	Skipped  []Violation     `json:"skipped" yaml:"skipped"`
	Failed   []RepairFailure `json:"failed" yaml:"failed"`
}

// Total returns the number of violations processed
func (r *RepairResult) Total() int {
	return len(r.Repaired) + len(r.Skipped) + len(r.Failed)
}
