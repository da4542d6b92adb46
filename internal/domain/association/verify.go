package association

import "fmt"

// Action is the synchronizer operation a verification follows
type Action string

const (
	ActionAssociate    Action = "associate"
	ActionDisassociate Action = "disassociate"
)

// NewAction parses an action string
func NewAction(value string) (Action, error) {
	a := Action(value)
	if a != ActionAssociate && a != ActionDisassociate {
		return "", fmt.Errorf("invalid verify action: %q", value)
	}
	return a, nil
}

func (a Action) String() string {
	return string(a)
}

// Side names one half of the association
type Side string

const (
	SideDevice  Side = "device"
	SideProduct Side = "product"
)

// Issue describes one half of a pair that does not match the expected state
type Issue struct {
	Side    Side   `json:"side"`
	Message string `json:"message"`
}

// VerifyResult is the outcome of a single-pair spot check
type VerifyResult struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

// AddIssue records a failed expectation
func (r *VerifyResult) AddIssue(side Side, format string, args ...any) {
	r.OK = false
	r.Issues = append(r.Issues, Issue{Side: side, Message: fmt.Sprintf(format, args...)})
}

// NewVerifyResult returns a passing result
func NewVerifyResult() *VerifyResult {
	return &VerifyResult{OK: true}
}
